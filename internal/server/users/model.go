package users

import "time"

type User struct {
	ID           int64
	Email        string
	UserName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
