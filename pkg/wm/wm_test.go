package wm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager()

	for _, id := range Apps() {
		win := mgr.Window(id)
		if win.IsOpen || win.IsMinimized || win.IsMaximized {
			t.Errorf("%s: expected closed clean window, got %+v", id, win)
		}
		if win.ZIndex != DefaultBaseZIndex {
			t.Errorf("%s: expected zIndex %d, got %d", id, DefaultBaseZIndex, win.ZIndex)
		}
		if win.Title != id.Title() {
			t.Errorf("%s: expected title %q, got %q", id, id.Title(), win.Title)
		}
	}
	if _, ok := mgr.Active(); ok {
		t.Error("expected no active window")
	}
	if mgr.NextZIndex() != DefaultNextZIndex {
		t.Errorf("expected next zIndex %d, got %d", DefaultNextZIndex, mgr.NextZIndex())
	}
}

func TestNewManagerSeedAboveBase(t *testing.T) {
	mgr := NewManager(WithZIndex(50, 5))

	if mgr.NextZIndex() <= 50 {
		t.Errorf("expected seed above base 50, got %d", mgr.NextZIndex())
	}
	mgr.Open(Skills)
	if mgr.Window(Skills).ZIndex <= mgr.Window(About).ZIndex {
		t.Error("expected opened window above the baseline")
	}
}

func TestParseAppID(t *testing.T) {
	tests := []struct {
		in      string
		want    AppID
		wantErr bool
	}{
		{"about", About, false},
		{"projects", Projects, false},
		{"skills", Skills, false},
		{"contact", Contact, false},
		{"terminal", Terminal, false},
		{"resume", 0, true},
		{"About", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseAppID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownApp) {
				t.Errorf("ParseAppID(%q) error = %v, want ErrUnknownApp", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAppID(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)

	win := mgr.Window(About)
	if !win.IsOpen || win.IsMinimized {
		t.Errorf("expected open visible window, got %+v", win)
	}
	if active, ok := mgr.Active(); !ok || active != About {
		t.Errorf("expected active about, got %v %v", active, ok)
	}
	if win.ZIndex != DefaultNextZIndex {
		t.Errorf("expected zIndex %d, got %d", DefaultNextZIndex, win.ZIndex)
	}
}

func TestOpenAlreadyOpenRefocuses(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Open(Projects)
	mgr.Open(About)

	if active, _ := mgr.Active(); active != About {
		t.Errorf("expected about active, got %s", active)
	}
	if mgr.Window(About).ZIndex <= mgr.Window(Projects).ZIndex {
		t.Error("expected about above projects after re-open")
	}
}

func TestOpenKeepsMaximized(t *testing.T) {
	mgr := NewManager()

	mgr.Open(Terminal)
	mgr.Maximize(Terminal)
	mgr.Minimize(Terminal)
	mgr.Open(Terminal)

	win := mgr.Window(Terminal)
	if !win.IsMaximized {
		t.Error("expected re-opened window to stay maximized")
	}
	if win.IsMinimized {
		t.Error("expected open to clear minimized")
	}
}

func TestClose(t *testing.T) {
	mgr := NewManager()

	mgr.Open(Contact)
	mgr.Maximize(Contact)
	z := mgr.Window(Contact).ZIndex
	mgr.Close(Contact)

	win := mgr.Window(Contact)
	if win.IsOpen || win.IsMinimized || win.IsMaximized {
		t.Errorf("expected clean closed window, got %+v", win)
	}
	if win.ZIndex != z {
		t.Errorf("expected zIndex untouched at %d, got %d", z, win.ZIndex)
	}
	if _, ok := mgr.Active(); ok {
		t.Error("expected no active window after closing the active one")
	}
}

func TestCloseInactiveKeepsActive(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Open(Projects)
	mgr.Close(About)

	if active, ok := mgr.Active(); !ok || active != Projects {
		t.Errorf("expected projects to stay active, got %v %v", active, ok)
	}
}

func TestCloseIdempotent(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Open(Skills)
	mgr.Close(Skills)
	once := mgr.Snapshot()
	mgr.Close(Skills)
	twice := mgr.Snapshot()

	data1, _ := json.Marshal(once)
	data2, _ := json.Marshal(twice)
	if string(data1) != string(data2) {
		t.Errorf("expected identical state, got\n%s\n%s", data1, data2)
	}
}

func TestMinimize(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Minimize(About)

	win := mgr.Window(About)
	if !win.IsOpen || !win.IsMinimized {
		t.Errorf("expected open minimized window, got %+v", win)
	}
	if _, ok := mgr.Active(); ok {
		t.Error("expected minimized window to lose focus")
	}
}

func TestMinimizeClosedIsNoop(t *testing.T) {
	mgr := NewManager()

	mgr.Minimize(Skills)

	if win := mgr.Window(Skills); win.IsMinimized || win.IsOpen {
		t.Errorf("expected closed window untouched, got %+v", win)
	}
}

func TestRestore(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Open(Projects)
	mgr.Minimize(About)
	mgr.Restore(About)

	win := mgr.Window(About)
	if win.IsMinimized || !win.IsOpen {
		t.Errorf("expected restored window, got %+v", win)
	}
	if active, _ := mgr.Active(); active != About {
		t.Errorf("expected about active, got %s", active)
	}
	if win.ZIndex <= mgr.Window(Projects).ZIndex {
		t.Error("expected restored window on top")
	}
}

func TestRestoreClosedIsNoop(t *testing.T) {
	mgr := NewManager()

	mgr.Open(Projects)
	mgr.Open(Contact)
	mgr.Close(Contact)
	before := mgr.Snapshot()
	mgr.Restore(Contact)
	after := mgr.Snapshot()

	if win := mgr.Window(Contact); win.IsOpen || win.IsMinimized {
		t.Errorf("expected contact to stay closed, got %+v", win)
	}
	if _, ok := mgr.Active(); ok {
		t.Error("expected no active window")
	}
	if before.NextZIndex != after.NextZIndex {
		t.Error("expected no stacking allocation for a closed window")
	}
}

func TestFocusClosedIsNoop(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Focus(Terminal)

	if active, _ := mgr.Active(); active != About {
		t.Errorf("expected about to stay active, got %s", active)
	}
	if mgr.Window(Terminal).IsOpen {
		t.Error("expected terminal to stay closed")
	}
}

func TestFocusNormalizesMinimized(t *testing.T) {
	mgr := NewManager()

	mgr.Open(Skills)
	mgr.Minimize(Skills)
	mgr.Focus(Skills)

	if mgr.Window(Skills).IsMinimized {
		t.Error("expected focus to clear minimized")
	}
	if active, ok := mgr.Active(); !ok || active != Skills {
		t.Errorf("expected skills active, got %v %v", active, ok)
	}
}

func TestFocusKeepsFlags(t *testing.T) {
	mgr := NewManager()

	mgr.Open(Projects)
	mgr.Maximize(Projects)
	mgr.Open(About)
	mgr.Focus(Projects)

	win := mgr.Window(Projects)
	if !win.IsOpen || !win.IsMaximized {
		t.Errorf("expected focus to leave flags alone, got %+v", win)
	}
}

func TestMaximizeToggles(t *testing.T) {
	mgr := NewManager()

	mgr.Open(Terminal)
	mgr.Maximize(Terminal)
	if !mgr.Window(Terminal).IsMaximized {
		t.Error("expected maximized after first toggle")
	}
	if active, _ := mgr.Active(); active != Terminal {
		t.Errorf("expected terminal active, got %s", active)
	}

	mgr.Maximize(Terminal)
	if mgr.Window(Terminal).IsMaximized {
		t.Error("expected normal size after second toggle")
	}
	if active, _ := mgr.Active(); active != Terminal {
		t.Errorf("expected terminal active, got %s", active)
	}
}

func TestMaximizeStealsFocus(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Open(Projects)
	mgr.Maximize(About)

	if active, _ := mgr.Active(); active != About {
		t.Errorf("expected about active, got %s", active)
	}
}

func TestMaximizeClosedIsNoop(t *testing.T) {
	mgr := NewManager()

	mgr.Maximize(Contact)

	if win := mgr.Window(Contact); win.IsMaximized {
		t.Error("expected closed window not to maximize")
	}
	if _, ok := mgr.Active(); ok {
		t.Error("expected no active window")
	}
}

func TestZOrderMonotonic(t *testing.T) {
	mgr := NewManager()
	for _, id := range Apps() {
		mgr.Open(id)
	}

	steps := []struct {
		op Op
		id AppID
	}{
		{OpFocus, About},
		{OpMaximize, Skills},
		{OpMinimize, Contact},
		{OpRestore, Contact},
		{OpOpen, Projects},
		{OpFocus, Terminal},
		{OpMaximize, About},
	}

	var touched []AppID
	for _, step := range steps {
		if err := mgr.Do(step.op, step.id); err != nil {
			t.Fatalf("Do(%s, %s) failed: %v", step.op, step.id, err)
		}
		if step.op == OpMinimize {
			continue
		}
		latest := mgr.Window(step.id).ZIndex
		for _, earlier := range touched {
			if earlier == step.id {
				continue
			}
			if z := mgr.Window(earlier).ZIndex; z >= latest {
				t.Errorf("after %s %s: %s has zIndex %d >= %d", step.op, step.id, earlier, z, latest)
			}
		}
		touched = append(touched, step.id)

		if top, _ := mgr.Topmost(); top != step.id {
			t.Errorf("after %s %s: expected topmost %s, got %s", step.op, step.id, step.id, top)
		}
	}
}

func TestActiveInvariant(t *testing.T) {
	mgr := NewManager()
	ops := []Op{OpOpen, OpMinimize, OpRestore, OpMaximize, OpFocus, OpClose}

	// Walk a deterministic mix of commands and check the invariant after each.
	for i := 0; i < 200; i++ {
		op := ops[(i*7)%len(ops)]
		id := AppID((i * 3) % int(appCount))
		mgr.Do(op, id)

		state := mgr.Snapshot()
		active, ok := state.ActiveID()
		if !ok {
			continue
		}
		win, _ := state.Window(active)
		if !win.IsOpen || win.IsMinimized {
			t.Fatalf("step %d (%s %s): active %s is not visible: %+v", i, op, id, active, win)
		}
	}
}

func TestScenarioMinimizeBehindActive(t *testing.T) {
	mgr := NewManager()

	mgr.Open(About)
	mgr.Open(Projects)
	mgr.Minimize(About)

	about := mgr.Window(About)
	projects := mgr.Window(Projects)
	if !about.IsOpen || !about.IsMinimized {
		t.Errorf("unexpected about state: %+v", about)
	}
	if !projects.IsOpen || projects.IsMinimized {
		t.Errorf("unexpected projects state: %+v", projects)
	}
	if active, _ := mgr.Active(); active != Projects {
		t.Errorf("expected projects active, got %s", active)
	}
	if projects.ZIndex <= about.ZIndex {
		t.Errorf("expected projects above about, got %d <= %d", projects.ZIndex, about.ZIndex)
	}
}

func TestUnknownAppPanics(t *testing.T) {
	mgr := NewManager()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for id outside the fixed set")
		}
	}()
	mgr.Open(AppID(42))
}

func TestObserver(t *testing.T) {
	var events []Event
	mgr := NewManager(WithObserver(func(e Event) {
		events = append(events, e)
	}))

	mgr.Open(About)
	mgr.Minimize(About)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Op != OpOpen || events[1].Op != OpMinimize {
		t.Errorf("unexpected ops: %s, %s", events[0].Op, events[1].Op)
	}
	win, _ := events[1].State.Window(About)
	if !win.IsMinimized {
		t.Error("expected event state to reflect the command")
	}
}

func TestSnapshotJSON(t *testing.T) {
	mgr := NewManager()
	mgr.Open(Terminal)

	data, err := json.Marshal(mgr.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Windows []struct {
			ID     string `json:"id"`
			IsOpen bool   `json:"isOpen"`
		} `json:"windows"`
		Active *string `json:"activeWindowId"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Active == nil || *decoded.Active != "terminal" {
		t.Errorf("expected activeWindowId terminal, got %v", decoded.Active)
	}
	if len(decoded.Windows) != len(Apps()) {
		t.Errorf("expected %d windows, got %d", len(Apps()), len(decoded.Windows))
	}

	mgr.Minimize(Terminal)
	data, _ = json.Marshal(mgr.Snapshot())
	decoded.Active = nil
	json.Unmarshal(data, &decoded)
	if decoded.Active != nil {
		t.Errorf("expected null activeWindowId, got %q", *decoded.Active)
	}
}
