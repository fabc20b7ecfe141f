// Package desktop hosts per-visitor desktop sessions: a window manager and
// a terminal scrollback, addressed by session id over HTTP.
package desktop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"portfolioos/pkg/logger"
	"portfolioos/pkg/terminal"
	"portfolioos/pkg/wm"
)

// Session-related errors
var (
	// ErrSessionNotFound is returned when a session does not exist or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the store is full.
	ErrTooManySessions = errors.New("too many sessions")
	// ErrTerminalClosed is returned when input is sent to a closed terminal.
	ErrTerminalClosed = errors.New("terminal window is not open")
)

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 2 * time.Hour
	// DefaultCleanupInterval is how often expired sessions are removed.
	DefaultCleanupInterval = 10 * time.Minute
	// DefaultMaxSessions bounds the number of live sessions.
	DefaultMaxSessions = 10000
)

// Session is one mounted desktop.
type Session struct {
	ID        string
	CreatedAt time.Time

	wm    *wm.Manager
	shell *terminal.Shell

	// cmd serializes Exec and Do, so input never reaches a terminal that
	// was closed after the open check.
	cmd sync.Mutex

	mu           sync.Mutex
	lastActivity time.Time
}

// Windows returns the session's window manager.
func (s *Session) Windows() *wm.Manager {
	return s.wm
}

// Shell returns the session's terminal.
func (s *Session) Shell() *terminal.Shell {
	return s.shell
}

// LastActivity returns when the session was last used.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

// Exec runs terminal input. exit closes the Terminal window after printing
// its reply.
func (s *Session) Exec(input string) (terminal.Result, wm.State, error) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	if !s.wm.Window(wm.Terminal).IsOpen {
		return terminal.Result{}, s.wm.Snapshot(), ErrTerminalClosed
	}
	res := s.shell.Exec(input)
	if res.Exit {
		s.wm.Close(wm.Terminal)
	}
	return res, s.wm.Snapshot(), nil
}

// Do applies a window command and returns the resulting state.
func (s *Session) Do(op wm.Op, app wm.AppID) (wm.State, error) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	err := s.wm.Do(op, app)
	return s.wm.Snapshot(), err
}

// ClickTaskbar applies a taskbar click and returns the command it resolved to.
func (s *Session) ClickTaskbar(app wm.AppID) (wm.Op, wm.State) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	op := s.wm.ClickTaskbar(app)
	return op, s.wm.Snapshot()
}

// Store manages desktop sessions.
type Store struct {
	sessions sync.Map
	count    atomic.Int64

	ttl             time.Duration
	cleanupInterval time.Duration
	maxSessions     int
	wmOptions       []wm.Option
	log             *logger.Logger
	now             func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the idle timeout.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often StartCleanup sweeps.
func WithCleanupInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

// WithMaxSessions bounds the number of live sessions.
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithWindowOptions passes options to every new window manager.
func WithWindowOptions(opts ...wm.Option) StoreOption {
	return func(s *Store) {
		s.wmOptions = append(s.wmOptions, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates an empty session store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		ttl:             DefaultTTL,
		cleanupInterval: DefaultCleanupInterval,
		maxSessions:     DefaultMaxSessions,
		log:             logger.Nop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create mounts a new desktop with every window closed.
func (st *Store) Create() (*Session, error) {
	if st.count.Add(1) > int64(st.maxSessions) {
		st.count.Add(-1)
		return nil, ErrTooManySessions
	}

	now := st.now()
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		shell:        terminal.New(),
		lastActivity: now,
	}

	// Closing the Terminal window unmounts it, so its scrollback starts
	// over on the next open.
	opts := append([]wm.Option{}, st.wmOptions...)
	opts = append(opts, wm.WithObserver(func(e wm.Event) {
		if e.Op == wm.OpClose && e.App == wm.Terminal {
			sess.shell.Reset()
		}
	}))
	sess.wm = wm.NewManager(opts...)

	st.sessions.Store(sess.ID, sess)
	st.log.Debug("Desktop session created", "session", sess.ID)
	return sess, nil
}

// Get returns a live session and marks it used.
func (st *Store) Get(id string) (*Session, error) {
	v, ok := st.sessions.Load(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*Session)

	now := st.now()
	if now.Sub(sess.LastActivity()) > st.ttl {
		st.remove(id)
		return nil, ErrSessionNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Delete unmounts a session.
func (st *Store) Delete(id string) error {
	if !st.remove(id) {
		return ErrSessionNotFound
	}
	st.log.Debug("Desktop session deleted", "session", id)
	return nil
}

func (st *Store) remove(id string) bool {
	if _, loaded := st.sessions.LoadAndDelete(id); loaded {
		st.count.Add(-1)
		return true
	}
	return false
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return int(st.count.Load())
}

// CleanupExpired removes idle sessions and returns how many were removed.
func (st *Store) CleanupExpired() int {
	now := st.now()
	removed := 0
	st.sessions.Range(func(key, value interface{}) bool {
		sess := value.(*Session)
		if now.Sub(sess.LastActivity()) > st.ttl && st.remove(key.(string)) {
			removed++
		}
		return true
	})
	return removed
}

// StartCleanup sweeps expired sessions every cleanup interval until ctx is
// done.
func (st *Store) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(st.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := st.CleanupExpired(); n > 0 {
					st.log.Info("Expired desktop sessions removed", "count", n, "live", st.Len())
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
