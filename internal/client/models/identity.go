// Package models defines the typed payloads exchanged with the TradeGuard
// backend and the identity cached by the client between runs.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Identity is the minimal user record cached locally for display and gating.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// FlexibleID decodes an identifier the backend may send as a JSON string or
// a JSON number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string { return string(f) }

// UserRecord is the user object embedded in authentication responses.
type UserRecord struct {
	ID          FlexibleID `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
}

// AuthPayload is returned by the login and register endpoints.
type AuthPayload struct {
	User        UserRecord `json:"user"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
}

// Profile is the authenticated user's profile.
type Profile struct {
	ID        FlexibleID `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt Timestamp  `json:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
