package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	usersrepo "github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory users.Repository backing the handler tests.
type memRepo struct {
	seq   int
	users map[string]*models.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*models.User{}}
}

func (r *memRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, common.ErrEmailAlreadyExists
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("id-%d", r.seq)
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return u, nil
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *memRepo) List(ctx context.Context) ([]*models.User, error) {
	out := []*models.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := r.users[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}

type memRepoManager struct {
	repo usersrepo.Repository
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository { return m.repo }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestServer(t *testing.T) (*Server, *fiber.App, *memRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		EndpointAddr:          "localhost:0",
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
	}

	repo := newMemRepo()
	svc := services.NewUserService(db, &memRepoManager{repo: repo}, cfg)
	srv := NewServer(cfg, testLogger(), svc, db)

	return srv, srv.newApp(), repo, mock
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()

	return resp, env
}

func register(t *testing.T, app *fiber.App, name, email, password string) envelope {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "",
		RegisterRequest{Name: name, Email: email, Password: password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return env
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "",
		LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestRegister(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	env := register(t, app, "Alice", "alice@example.com", "pass123")
	assert.Equal(t, http.StatusCreated, env.Status)
	assert.Equal(t, "User registered successfully", env.Message)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", data["email"])
	// the hash never appears in the payload
	_, leaked := data["password_hash"]
	assert.False(t, leaked)
}

func TestRegister_ValidationFailures(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body RegisterRequest
	}{
		{"short name", RegisterRequest{Name: "Al", Email: "alice@example.com", Password: "pass123"}},
		{"bad email", RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "pass123"}},
		{"short password", RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "p"}},
		{"empty", RegisterRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	register(t, app, "Alice", "alice@example.com", "pass123")

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "",
		RegisterRequest{Name: "Other", Email: "alice@example.com", Password: "different"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User already exists with this email", env.Message)
}

func TestLogin(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	register(t, app, "Alice", "alice@example.com", "pass123")
	token := login(t, app, "alice@example.com", "pass123")
	assert.NotEmpty(t, token)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	register(t, app, "Alice", "alice@example.com", "pass123")

	t.Run("wrong password", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "",
			LoginRequest{Email: "alice@example.com", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid email or password", env.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "",
			LoginRequest{Email: "nobody@example.com", Password: "pass123"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid email or password", env.Message)
	})
}

func TestMe(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	register(t, app, "Alice", "alice@example.com", "pass123")
	token := login(t, app, "alice@example.com", "pass123")

	resp, env := doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestMe_Rejections(t *testing.T) {
	_, app, repo, _ := newTestServer(t)

	register(t, app, "Alice", "alice@example.com", "pass123")
	token := login(t, app, "alice@example.com", "pass123")

	t.Run("no header", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/auth/me", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("user deleted after issue", func(t *testing.T) {
		for id := range repo.users {
			delete(repo.users, id)
		}
		resp, _ := doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

// flakyRepo lets a test break the user store after tokens were issued.
type flakyRepo struct {
	*memRepo
	getByIDErr error
}

func (r *flakyRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.getByIDErr != nil {
		return nil, r.getByIDErr
	}
	return r.memRepo.GetByID(ctx, id)
}

func TestMe_StoreFailureIsServerFault(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		EndpointAddr:          "localhost:0",
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
	}

	repo := &flakyRepo{memRepo: newMemRepo()}
	svc := services.NewUserService(db, &memRepoManager{repo: repo}, cfg)
	app := NewServer(cfg, testLogger(), svc, db).newApp()

	register(t, app, "Alice", "alice@example.com", "pass123")
	token := login(t, app, "alice@example.com", "pass123")

	// A failing store must come back as a server fault, not a rejection:
	// the caller has to be able to tell "not allowed" from "could not check".
	repo.getByIDErr = errors.New("connection refused")

	resp, env := doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Server error during authentication", env.Message)
}

func TestLogout(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	register(t, app, "Alice", "alice@example.com", "pass123")
	token := login(t, app, "alice@example.com", "pass123")

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", env.Message)

	// Logout requires a valid token like any other protected route.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserCRUD(t *testing.T) {
	_, app, _, mock := newTestServer(t)

	// create
	resp, env := doJSON(t, app, http.MethodPost, "/api/user", "",
		RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "pass123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := env.Data.(map[string]interface{})
	id := data["id"].(string)
	require.NotEmpty(t, id)

	// list
	resp, env = doJSON(t, app, http.MethodGet, "/api/user", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, ok := env.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)

	// fetch
	resp, env = doJSON(t, app, http.MethodGet, "/api/user/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User fetched successfully", env.Message)

	// update runs in a transaction against the database handle
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, env = doJSON(t, app, http.MethodPut, "/api/user/"+id, "",
		UserRequest{Name: "Alice Cooper"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = env.Data.(map[string]interface{})
	assert.Equal(t, "Alice Cooper", data["name"])
	assert.Equal(t, "alice@example.com", data["email"])

	// delete
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/user/"+id, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/user/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	_, app, _, _ := newTestServer(t)

	resp, env := doJSON(t, app, http.MethodGet, "/api/user/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", env.Message)
}

func TestHealthz(t *testing.T) {
	_, app, _, mock := newTestServer(t)

	mock.ExpectPing()
	resp, env := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", env.Message)

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))
	resp, _ = doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	assert.NoError(t, mock.ExpectationsWereMet())
}
