package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/userkeeper/internal/client/api"
	"github.com/dmitrijs2005/userkeeper/internal/client/config"
)

// userAPI is the backend surface the CLI needs. *api.Client satisfies it;
// tests substitute a stub.
type userAPI interface {
	Register(ctx context.Context, name, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Me(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context) error
	Token() string
}

type App struct {
	config   *config.Config
	api      userAPI
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	apiClient := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}
