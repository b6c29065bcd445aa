// Package repository declares the storage interfaces the controllers depend on.
package repository

import "context"

// Keys persisted by the session store.
const (
	KeyToken    = "token"
	KeyUsername = "username"
)

// SessionStore is the persistent key-value store behind auto-login.
//
// It plays the role a browser's localStorage plays for a web page: written on
// a successful login/signup, cleared on logout, read once at startup.
// Get reports ok=false for a missing key rather than returning an error.
type SessionStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}
