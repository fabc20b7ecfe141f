package wm

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

const (
	// DefaultBaseZIndex is the stacking value every window starts with.
	DefaultBaseZIndex = 1
	// DefaultNextZIndex is the first value handed out by a raise.
	DefaultNextZIndex = 10
)

// Manager owns the window state of one desktop session.
type Manager struct {
	mu         sync.RWMutex
	windows    [appCount]Descriptor
	active     AppID
	hasActive  bool
	nextZIndex int
	observers  []func(Event)
}

// Config holds configuration for the window manager.
type Config struct {
	BaseZIndex int
	NextZIndex int
}

// Option configures a Manager.
type Option func(*Config, *Manager)

// WithZIndex overrides the initial stacking value and the counter seed.
// The seed is raised above base when needed.
func WithZIndex(base, next int) Option {
	return func(cfg *Config, _ *Manager) {
		cfg.BaseZIndex = base
		cfg.NextZIndex = next
	}
}

// WithObserver registers fn to be called after every command is applied.
// Observers run outside the manager lock and may query the manager.
func WithObserver(fn func(Event)) Option {
	return func(_ *Config, m *Manager) {
		if fn != nil {
			m.observers = append(m.observers, fn)
		}
	}
}

// NewManager creates a window manager with every application closed.
func NewManager(opts ...Option) *Manager {
	cfg := Config{
		BaseZIndex: DefaultBaseZIndex,
		NextZIndex: DefaultNextZIndex,
	}
	m := &Manager{}
	for _, opt := range opts {
		opt(&cfg, m)
	}
	if cfg.NextZIndex <= cfg.BaseZIndex {
		cfg.NextZIndex = cfg.BaseZIndex + 1
	}

	for _, id := range Apps() {
		m.windows[id] = Descriptor{
			ID:     id,
			Title:  id.Title(),
			ZIndex: cfg.BaseZIndex,
		}
	}
	m.nextZIndex = cfg.NextZIndex

	return m
}

// mustValid panics on identifiers outside the fixed set. Callers at a
// system boundary use ParseAppID, so reaching this is a programming error.
func mustValid(id AppID) {
	if !id.Valid() {
		panic(fmt.Sprintf("wm: application id %d outside the fixed set", int(id)))
	}
}

// raise assigns the next stacking value to id. Caller holds mu.
func (m *Manager) raise(id AppID) {
	m.windows[id].ZIndex = m.nextZIndex
	m.nextZIndex++
}

// Open shows the window for id, brings it to the front and focuses it.
// Opening an already visible window only re-focuses it. A maximized
// window stays maximized.
func (m *Manager) Open(id AppID) {
	m.apply(id, func() Op {
		m.open(id)
		return OpOpen
	})
}

// Close removes the window from view and resets it to the clean closed
// state. The stacking value is left untouched.
func (m *Manager) Close(id AppID) {
	m.apply(id, func() Op {
		m.close(id)
		return OpClose
	})
}

// Minimize hides an open window while keeping it open. A minimized window
// is never active. Minimizing a closed window does nothing.
func (m *Manager) Minimize(id AppID) {
	m.apply(id, func() Op {
		m.minimize(id)
		return OpMinimize
	})
}

// Restore un-hides a minimized window and focuses it. Restoring a closed
// window does nothing.
func (m *Manager) Restore(id AppID) {
	m.apply(id, func() Op {
		m.restore(id)
		return OpRestore
	})
}

// Maximize toggles full-canvas occupancy of an open window and focuses it.
// Maximizing a closed window does nothing.
func (m *Manager) Maximize(id AppID) {
	m.apply(id, func() Op {
		m.maximize(id)
		return OpMaximize
	})
}

// Focus brings an open window to the front and makes it active. A window
// that is still minimized is un-hidden. Focusing a closed window does
// nothing.
func (m *Manager) Focus(id AppID) {
	m.apply(id, func() Op {
		if m.windows[id].IsOpen {
			m.focus(id)
		}
		return OpFocus
	})
}

// Do applies the command op to id.
func (m *Manager) Do(op Op, id AppID) error {
	switch op {
	case OpOpen:
		m.Open(id)
	case OpClose:
		m.Close(id)
	case OpMinimize:
		m.Minimize(id)
	case OpRestore:
		m.Restore(id)
	case OpMaximize:
		m.Maximize(id)
	case OpFocus:
		m.Focus(id)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, int(op))
	}
	return nil
}

// The lower-case helpers below mutate state and expect mu to be held.

func (m *Manager) open(id AppID) {
	w := &m.windows[id]
	w.IsOpen = true
	w.IsMinimized = false
	m.raise(id)
	m.active, m.hasActive = id, true
}

func (m *Manager) close(id AppID) {
	w := &m.windows[id]
	w.IsOpen = false
	w.IsMinimized = false
	w.IsMaximized = false
	m.clearActive(id)
}

func (m *Manager) minimize(id AppID) {
	w := &m.windows[id]
	if !w.IsOpen {
		return
	}
	w.IsMinimized = true
	m.clearActive(id)
}

func (m *Manager) restore(id AppID) {
	if !m.windows[id].IsOpen {
		return
	}
	m.windows[id].IsMinimized = false
	m.focus(id)
}

func (m *Manager) maximize(id AppID) {
	w := &m.windows[id]
	if !w.IsOpen {
		return
	}
	w.IsMaximized = !w.IsMaximized
	m.focus(id)
}

func (m *Manager) focus(id AppID) {
	m.active, m.hasActive = id, true
	m.raise(id)
	m.windows[id].IsMinimized = false
}

func (m *Manager) clearActive(id AppID) {
	if m.hasActive && m.active == id {
		m.hasActive = false
	}
}

// apply runs fn under the lock and then notifies observers with the
// command fn reports.
func (m *Manager) apply(id AppID, fn func() Op) Op {
	mustValid(id)

	m.mu.Lock()
	op := fn()
	var state State
	observers := m.observers
	if len(observers) > 0 {
		state = m.snapshotLocked()
	}
	m.mu.Unlock()

	for _, observe := range observers {
		observe(Event{Op: op, App: id, State: state})
	}
	return op
}

// Window returns the current descriptor for id.
func (m *Manager) Window(id AppID) Descriptor {
	mustValid(id)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.windows[id]
}

// Active returns the focused application, if any.
func (m *Manager) Active() (AppID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.hasActive
}

// NextZIndex returns the value the next raise will allocate.
func (m *Manager) NextZIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextZIndex
}

// Snapshot returns a copy of the whole window state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	windows := make([]Descriptor, len(m.windows))
	copy(windows, m.windows[:])

	state := State{
		Windows:    windows,
		NextZIndex: m.nextZIndex,
	}
	if m.hasActive {
		active := m.active
		state.Active = &active
	}
	return state
}

// Topmost returns the visible window with the highest stacking value.
func (m *Manager) Topmost() (AppID, bool) {
	visible := lo.Filter(m.Snapshot().Windows, func(d Descriptor, _ int) bool {
		return d.Visible()
	})
	if len(visible) == 0 {
		return 0, false
	}
	top := lo.MaxBy(visible, func(a, b Descriptor) bool {
		return a.ZIndex > b.ZIndex
	})
	return top.ID, true
}
