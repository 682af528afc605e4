// Package services contains the application services of the TradeGuard
// client. The session manager owns the signed-in identity and credential,
// keeps them in the local store across runs and reacts to the gateway's
// unauthorized signal. The report service generates, downloads and archives
// analysis reports.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tradeguard/internal/client/gateway"
	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tradeguard/internal/common"
	"github.com/dmitrijs2005/tradeguard/internal/dbx"
	"github.com/dmitrijs2005/tradeguard/internal/logging"
)

// Messages returned in AuthResult when the backend gave no usable answer.
const (
	MsgInvalidAuthResponse = "Invalid response from server"
	MsgSessionNotSaved     = "Signed in, but the session could not be saved locally"
)

// State is the authentication state of a SessionManager.
type State int

const (
	// StateUnknown means local storage has not been consulted yet.
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthResult is the outcome of SignIn and SignUp. Error is set only when
// Success is false.
type AuthResult struct {
	Success bool
	Error   string
}

// AuthGateway is the part of the gateway the session manager depends on.
//
// Contract:
//   - Login / Register: return a failure Result, never an error, on rejection.
//   - SetCredentialSource: the getter is consulted on every request.
//   - SetUnauthorizedHandler: the handler runs once per 401 response.
type AuthGateway interface {
	Login(ctx context.Context, req models.LoginRequest) gateway.Result[models.AuthPayload]
	Register(ctx context.Context, req models.RegisterRequest) gateway.Result[models.AuthPayload]
	SetCredentialSource(fn func() string)
	SetUnauthorizedHandler(fn func())
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *SessionManager) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOnExpired sets the callback run when an authenticated session is
// rejected by the backend. It runs at most once per expiry.
func WithOnExpired(fn func()) SessionOption {
	return func(s *SessionManager) {
		s.onExpired = fn
	}
}

// WithClearTimeout bounds the storage cleanup done after a 401.
func WithClearTimeout(d time.Duration) SessionOption {
	return func(s *SessionManager) {
		if d > 0 {
			s.clearTimeout = d
		}
	}
}

// SessionManager owns the identity and credential of the signed-in user.
// It is safe for concurrent use.
type SessionManager struct {
	gw           AuthGateway
	db           *sql.DB
	log          logging.Logger
	onExpired    func()
	clearTimeout time.Duration

	mu         sync.RWMutex
	state      State
	identity   *models.Identity
	credential string
}

// NewSessionManager wires the manager into gw: the gateway reads the
// credential from it and reports 401 responses to it. Call Restore to load
// a previously saved session.
func NewSessionManager(gw AuthGateway, db *sql.DB, opts ...SessionOption) *SessionManager {
	s := &SessionManager{
		gw:           gw,
		db:           db,
		log:          logging.Discard(),
		clearTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	gw.SetCredentialSource(s.Credential)
	gw.SetUnauthorizedHandler(s.expire)
	return s
}

// Restore loads the saved session. A missing key or an identity that does
// not decode leaves the manager unauthenticated and removes both keys.
// Restore has no effect once the state is known.
func (s *SessionManager) Restore(ctx context.Context) State {
	if st := s.State(); st != StateUnknown {
		return st
	}

	identity, credential, err := s.load(ctx)
	if err != nil {
		s.log.Warn(ctx, "discarding saved session", "error", err)
		if perr := s.purge(ctx); perr != nil {
			s.log.Error(ctx, "purge saved session", "error", perr)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnknown {
		return s.state
	}
	if identity == nil {
		s.state = StateUnauthenticated
		return s.state
	}
	s.identity = identity
	s.credential = credential
	s.state = StateAuthenticated
	s.log.Debug(ctx, "session restored", "user_id", identity.ID)
	return s.state
}

// load returns the saved pair, or (nil, "", nil) when nothing is saved.
// Half-saved or undecodable state is an error.
func (s *SessionManager) load(ctx context.Context) (*models.Identity, string, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	credential, hasCredential, err := repo.Get(ctx, common.CredentialKey)
	if err != nil {
		return nil, "", err
	}
	rawIdentity, hasIdentity, err := repo.Get(ctx, common.IdentityKey)
	if err != nil {
		return nil, "", err
	}

	switch {
	case !hasCredential && !hasIdentity:
		return nil, "", nil
	case !hasCredential || credential == "":
		return nil, "", fmt.Errorf("%w: credential missing", common.ErrCorruptSession)
	case !hasIdentity:
		return nil, "", fmt.Errorf("%w: identity missing", common.ErrCorruptSession)
	}

	var identity *models.Identity
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		return nil, "", fmt.Errorf("%w: %v", common.ErrCorruptSession, err)
	}
	if identity == nil || identity.ID == "" {
		return nil, "", fmt.Errorf("%w: identity empty", common.ErrCorruptSession)
	}
	return identity, credential, nil
}

// SignIn authenticates with email and password. On failure the current
// state is left untouched.
func (s *SessionManager) SignIn(ctx context.Context, email, password string) AuthResult {
	res := s.gw.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if !res.OK {
		return AuthResult{Error: res.Error}
	}
	return s.establish(ctx, res.Data, email, "")
}

// SignUp registers a new account and signs it in. The identity's name is
// displayName, or username when displayName is empty.
func (s *SessionManager) SignUp(ctx context.Context, email, password, displayName, username string) AuthResult {
	res := s.gw.Register(ctx, models.RegisterRequest{Email: email, Username: username, Password: password})
	if !res.OK {
		return AuthResult{Error: res.Error}
	}
	if res.Data.User.Username == "" {
		res.Data.User.Username = username
	}
	return s.establish(ctx, res.Data, email, displayName)
}

func (s *SessionManager) establish(ctx context.Context, p models.AuthPayload, email, displayName string) AuthResult {
	if p.AccessToken == "" || p.User.ID == "" {
		s.log.Warn(ctx, "auth response without token or user id")
		return AuthResult{Error: MsgInvalidAuthResponse}
	}

	identity := models.Identity{
		ID:       p.User.ID.String(),
		Email:    firstNonEmpty(p.User.Email, email),
		Name:     firstNonEmpty(displayName, p.User.DisplayName, p.User.Username),
		Username: p.User.Username,
	}

	if err := s.persist(ctx, identity, p.AccessToken); err != nil {
		s.log.Error(ctx, "save session", "error", err)
		return AuthResult{Error: MsgSessionNotSaved}
	}

	s.mu.Lock()
	s.identity = &identity
	s.credential = p.AccessToken
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.log.Info(ctx, "signed in", "user_id", identity.ID)
	return AuthResult{Success: true}
}

// persist writes the credential and identity in one transaction.
func (s *SessionManager) persist(ctx context.Context, identity models.Identity, credential string) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.CredentialKey, credential); err != nil {
			return err
		}
		return repo.Set(ctx, common.IdentityKey, string(raw))
	})
}

// purge removes both saved keys in one transaction.
func (s *SessionManager) purge(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.CredentialKey, common.IdentityKey)
	})
}

// clear drops the in-memory session and reports whether one was active.
func (s *SessionManager) clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAuthenticated := s.state == StateAuthenticated
	s.identity = nil
	s.credential = ""
	s.state = StateUnauthenticated
	return wasAuthenticated
}

// SignOut forgets the session in memory and in storage. It is safe to call
// at any time, any number of times.
func (s *SessionManager) SignOut(ctx context.Context) {
	s.clear()
	if err := s.purge(ctx); err != nil {
		s.log.Error(ctx, "purge saved session", "error", err)
	}
}

// expire is the gateway's unauthorized handler.
func (s *SessionManager) expire() {
	wasAuthenticated := s.clear()

	ctx, cancel := context.WithTimeout(context.Background(), s.clearTimeout)
	defer cancel()
	if err := s.purge(ctx); err != nil {
		s.log.Error(ctx, "purge expired session", "error", err)
	}

	if wasAuthenticated {
		s.log.Info(ctx, "session expired")
		if s.onExpired != nil {
			s.onExpired()
		}
	}
}

// Credential returns the current bearer credential, or "" when signed out.
func (s *SessionManager) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Identity returns a copy of the signed-in identity.
func (s *SessionManager) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

func (s *SessionManager) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

func (s *SessionManager) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
