// Package users registers and authenticates accounts of the development
// server.
package users

import (
	"context"
)

// Repository stores users. Lookups by email are case-insensitive.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}
