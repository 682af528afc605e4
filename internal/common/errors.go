// Package common defines shared constants and sentinel errors used across
// client and mock backend layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAlreadyExists      = errors.New("user with this email or username already exists")

	// Local session errors.
	ErrCorruptSession = errors.New("corrupt local session")
)
