package wm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// AppID identifies one of the fixed desktop applications.
type AppID int

const (
	// About is the About.exe window.
	About AppID = iota
	// Projects is the project browser window.
	Projects
	// Skills is the skills control panel window.
	Skills
	// Contact is the contact form window.
	Contact
	// Terminal is the mock terminal window.
	Terminal

	appCount
)

var appNames = [appCount]string{
	About:    "about",
	Projects: "projects",
	Skills:   "skills",
	Contact:  "contact",
	Terminal: "terminal",
}

var appTitles = [appCount]string{
	About:    "About.exe",
	Projects: "Projects",
	Skills:   "Skills Control Panel",
	Contact:  "Contact",
	Terminal: "Terminal",
}

// ErrUnknownApp is returned when parsing an application identifier that is
// not part of the desktop.
var ErrUnknownApp = errors.New("unknown application")

// Apps returns every application identifier in declaration order.
func Apps() []AppID {
	ids := make([]AppID, appCount)
	for i := range ids {
		ids[i] = AppID(i)
	}
	return ids
}

// ParseAppID converts a wire identifier such as "terminal" into an AppID.
func ParseAppID(s string) (AppID, error) {
	for i, name := range appNames {
		if name == s {
			return AppID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownApp, s)
}

// Valid reports whether id belongs to the fixed application set.
func (id AppID) Valid() bool {
	return id >= 0 && id < appCount
}

// String returns the wire identifier of the application.
func (id AppID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return appNames[id]
}

// Title returns the static display label of the application.
func (id AppID) Title() string {
	if !id.Valid() {
		return ""
	}
	return appTitles[id]
}

// MarshalJSON encodes the identifier as its wire string.
func (id AppID) MarshalJSON() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownApp, int(id))
	}
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes a wire string into an identifier.
func (id *AppID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAppID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Descriptor is the state of one application window.
type Descriptor struct {
	ID          AppID  `json:"id"`
	Title       string `json:"title"`
	IsOpen      bool   `json:"isOpen"`
	IsMinimized bool   `json:"isMinimized"`
	IsMaximized bool   `json:"isMaximized"`
	ZIndex      int    `json:"zIndex"`
}

// Visible reports whether the window is open and not minimized.
func (d Descriptor) Visible() bool {
	return d.IsOpen && !d.IsMinimized
}

// State is a read-only snapshot of a Manager.
type State struct {
	Windows    []Descriptor `json:"windows"`
	Active     *AppID       `json:"activeWindowId"`
	NextZIndex int          `json:"nextZIndex"`
}

// Window returns the descriptor for id from the snapshot.
func (s State) Window(id AppID) (Descriptor, bool) {
	for _, d := range s.Windows {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ActiveID returns the focused application, if any.
func (s State) ActiveID() (AppID, bool) {
	if s.Active == nil {
		return 0, false
	}
	return *s.Active, true
}

// OpenWindows returns every open window, minimized ones included, in
// application order.
func (s State) OpenWindows() []Descriptor {
	return lo.Filter(s.Windows, func(d Descriptor, _ int) bool {
		return d.IsOpen
	})
}

// Op names a window manager command.
type Op int

const (
	OpOpen Op = iota
	OpClose
	OpMinimize
	OpRestore
	OpMaximize
	OpFocus
)

var opNames = [...]string{
	OpOpen:     "open",
	OpClose:    "close",
	OpMinimize: "minimize",
	OpRestore:  "restore",
	OpMaximize: "maximize",
	OpFocus:    "focus",
}

// ErrUnknownOp is returned when parsing a command name that does not exist.
var ErrUnknownOp = errors.New("unknown window operation")

// String returns the command name.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "unknown"
	}
	return opNames[op]
}

// ParseOp converts a command name such as "minimize" into an Op.
func ParseOp(s string) (Op, error) {
	for i, name := range opNames {
		if name == s {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Event describes a command that was applied to a Manager.
type Event struct {
	Op    Op
	App   AppID
	State State
}
