// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored user record. PasswordHash never leaves the process:
// the json:"-" tag keeps it out of every response payload.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
