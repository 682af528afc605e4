// Package metadata stores small string-keyed values in the client's local
// SQLite database. The session manager keeps the credential and the cached
// identity here.
package metadata

import (
	"context"
)

// Repository is a key-value view over the metadata table. Implementations are
// bound to either a *sql.DB or a *sql.Tx via dbx.DBTX, so several calls can be
// grouped into one transaction.
type Repository interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key, value string) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
