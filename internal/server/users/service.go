package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tradeguard/internal/common"
	"github.com/dmitrijs2005/tradeguard/internal/server/auth"
	"github.com/dmitrijs2005/tradeguard/internal/server/config"
)

// ErrInactive is returned by Login for a deactivated account.
var ErrInactive = errors.New("inactive user")

type Service struct {
	repo                        Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.TokenTTL,
	}
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, email, username, password string) (*User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{
		Email:        email,
		UserName:     username,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords both yield common.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrInactive
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves an access token to its user. It returns
// common.ErrTokenExpired, common.ErrInvalidToken, or common.ErrUnauthorized
// when the user no longer exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	sub, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	token, err := auth.GenerateToken(strconv.FormatInt(user.ID, 10), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
