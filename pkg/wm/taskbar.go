package wm

import "github.com/samber/lo"

// TaskbarEntry is one button on the taskbar.
type TaskbarEntry struct {
	ID        AppID  `json:"id"`
	Title     string `json:"title"`
	Minimized bool   `json:"minimized"`
	Active    bool   `json:"active"`
}

// Taskbar lists one entry per open window in application order.
func (m *Manager) Taskbar() []TaskbarEntry {
	state := m.Snapshot()
	active, hasActive := state.ActiveID()
	return lo.Map(state.OpenWindows(), func(d Descriptor, _ int) TaskbarEntry {
		return TaskbarEntry{
			ID:        d.ID,
			Title:     d.Title,
			Minimized: d.IsMinimized,
			Active:    hasActive && active == d.ID && !d.IsMinimized,
		}
	})
}

// ClickTaskbar handles a click on the taskbar entry for id: the active
// window is minimized, a minimized one is restored and anything else is
// brought to the front. It returns the command that was applied.
func (m *Manager) ClickTaskbar(id AppID) Op {
	return m.apply(id, func() Op {
		w := m.windows[id]
		switch {
		case m.hasActive && m.active == id && !w.IsMinimized:
			m.minimize(id)
			return OpMinimize
		case w.IsMinimized:
			m.restore(id)
			return OpRestore
		default:
			m.open(id)
			return OpOpen
		}
	})
}
