package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolioos/pkg/logger"
	"portfolioos/pkg/store"
)

// Auth-related errors
var (
	// ErrInvalidCredentials is returned when username/password is invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned when the account is locked due to too many attempts.
	ErrAccountLocked = errors.New("account is locked")
)

// MaxLoginAttempts is the maximum number of failed login attempts before lockout.
const MaxLoginAttempts = 5

// DefaultLockoutDuration is the default lockout duration after too many attempts.
const DefaultLockoutDuration = 15 * time.Minute

// dummyHash is compared against when the username does not exist so that
// unknown users cost the same as wrong passwords.
var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("portfolio-os-dummy"), DefaultBCryptCost)
		if err == nil {
			dummyHash = string(h)
		}
	})
	_ = CheckPassword(password, dummyHash)
}

// UserStore is the subset of the document store the authenticator needs.
type UserStore interface {
	UserByUsername(ctx context.Context, username string) (*store.User, error)
	UserByID(ctx context.Context, id string) (*store.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
}

// Config configures an Authenticator.
type Config struct {
	Secret      []byte
	TokenTTL    time.Duration
	MaxAttempts int
	Lockout     time.Duration
	// CleanupInterval is how often StartCleanup forgets stale failures.
	// Defaults to one minute.
	CleanupInterval time.Duration
}

// DefaultCleanupInterval is how often stale login failures are swept.
const DefaultCleanupInterval = time.Minute

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	Token    string `json:"token"`
}

type loginKey struct {
	username string
	client   string
}

type loginState struct {
	attempts    int
	lastFailure time.Time
	lockedUntil time.Time
}

// Authenticator verifies credentials against the user store and issues
// login tokens. Failed attempts against existing users are tracked in
// memory per username and client address.
type Authenticator struct {
	users           UserStore
	signer          *Signer
	log             *logger.Logger
	maxAttempts     int
	lockout         time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu     sync.Mutex
	states map[loginKey]*loginState
}

// NewAuthenticator creates an Authenticator. When cfg.Secret is empty a
// random secret is generated, which invalidates tokens across restarts.
func NewAuthenticator(users UserStore, cfg Config, log *logger.Logger) (*Authenticator, error) {
	if log == nil {
		log = logger.Nop()
	}
	if len(cfg.Secret) == 0 {
		secret, err := GenerateToken(DefaultTokenLength)
		if err != nil {
			return nil, err
		}
		cfg.Secret = []byte(secret)
		log.Warn("No JWT secret configured, using a generated one", "secret", MaskToken(secret))
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = MaxLoginAttempts
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = DefaultLockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	return &Authenticator{
		users:           users,
		signer:          NewSigner(cfg.Secret, cfg.TokenTTL),
		log:             log,
		maxAttempts:     cfg.MaxAttempts,
		lockout:         cfg.Lockout,
		cleanupInterval: cfg.CleanupInterval,
		now:             time.Now,
		states:          make(map[loginKey]*loginState),
	}, nil
}

// Login verifies username and password for a request coming from client,
// usually the remote IP, and returns a signed token. A hash stored with a
// cost below DefaultBCryptCost is replaced after a successful check.
func (a *Authenticator) Login(ctx context.Context, username, password, client string) (*LoginResult, error) {
	key := loginKey{username: username, client: client}
	if a.locked(key) {
		return nil, ErrAccountLocked
	}

	u, err := a.users.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// Unknown names are not tracked, only timed like a real check.
		compareDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := CheckPassword(password, u.PasswordHash); err != nil {
		a.recordFailure(key)
		return nil, ErrInvalidCredentials
	}
	a.reset(key)

	if NeedsRehash(u.PasswordHash) {
		a.rehash(ctx, u, password)
	}

	token, err := a.signer.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	a.log.Info("User logged in", "username", u.Username, "admin", u.IsAdmin, "client", client)
	return &LoginResult{
		ID:       u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		Token:    token,
	}, nil
}

// rehash stores a fresh hash of password. Failure is logged and the login
// still succeeds.
func (a *Authenticator) rehash(ctx context.Context, u *store.User, password string) {
	hash, err := HashPassword(password)
	if err == nil {
		err = a.users.SetPassword(ctx, u.ID, hash)
	}
	if err != nil {
		a.log.Error("Failed to upgrade password hash", err, "username", u.Username)
		return
	}
	u.PasswordHash = hash
	a.log.Info("Password hash upgraded", "username", u.Username, "cost", DefaultBCryptCost)
}

// Authenticate resolves a bearer token to its user.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*store.User, error) {
	id, err := a.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := a.users.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// IsLocked reports whether username is locked out for client.
func (a *Authenticator) IsLocked(username, client string) bool {
	return a.locked(loginKey{username: username, client: client})
}

// Tracked returns how many username and client pairs have failures on record.
func (a *Authenticator) Tracked() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.states)
}

func (a *Authenticator) locked(key loginKey) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[key]
	return ok && !st.lockedUntil.IsZero() && a.now().Before(st.lockedUntil)
}

func (a *Authenticator) recordFailure(key loginKey) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	st, ok := a.states[key]
	if !ok {
		st = &loginState{}
		a.states[key] = st
	}
	if a.staleLocked(st, now) {
		// Expired lockout or an idle counter starts a fresh window.
		st.attempts = 0
		st.lockedUntil = time.Time{}
	}

	st.attempts++
	st.lastFailure = now
	if st.attempts >= a.maxAttempts {
		st.lockedUntil = now.Add(a.lockout)
		a.log.Warn("Account locked after failed logins",
			"username", key.username, "client", key.client, "attempts", st.attempts)
	}
}

// staleLocked reports whether st no longer affects logins: its lockout has
// ended, or it never locked and the last failure is older than the lockout
// window.
func (a *Authenticator) staleLocked(st *loginState, now time.Time) bool {
	if !st.lockedUntil.IsZero() {
		return !now.Before(st.lockedUntil)
	}
	return now.Sub(st.lastFailure) >= a.lockout
}

func (a *Authenticator) reset(key loginKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, key)
}

// CleanupExpired forgets failures whose lockout has ended or that have been
// idle for a full lockout window. It returns how many were removed.
func (a *Authenticator) CleanupExpired() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	removed := 0
	for key, st := range a.states {
		if a.staleLocked(st, now) {
			delete(a.states, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanupExpired every cleanup interval until ctx is done.
func (a *Authenticator) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(a.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := a.CleanupExpired(); n > 0 {
					a.log.Debug("Stale login failures removed", "count", n, "tracked", a.Tracked())
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
