// Package terminal implements the command interpreter behind the desktop's
// Terminal app. It is a fixed table of built-in commands, not a real shell.
package terminal

import (
	"strings"
	"sync"
)

// Banner lines every new shell starts with.
var Banner = []string{
	"Welcome to Portfolio OS Terminal v1.0.0",
	"Type 'help' to see available commands.",
}

// DefaultMaxHistory caps the number of lines a shell retains.
const DefaultMaxHistory = 500

// BuiltinFunc produces the reply lines for a command.
type BuiltinFunc func() []string

// BuiltinCommand is one entry of the command table.
type BuiltinCommand struct {
	Name string
	Func BuiltinFunc
	Help string
}

func reply(line string) BuiltinFunc {
	return func() []string { return []string{line} }
}

// builtins holds all built-in commands. clear is handled by the shell
// itself because it rewrites history rather than appending to it.
var builtins = []BuiltinCommand{
	{"help", reply("Available commands: help, whoami, skills, clear, exit"), "List available commands"},
	{"whoami", reply("user@portfolio-os: Full Stack Engineer & Systems Enthusiast"), "Describe the site owner"},
	{"skills", reply("Try opening the Skills app for a visual representation."), "Point at the Skills app"},
	{"exit", reply("Closing terminal..."), "Close the terminal window"},
}

var builtinMap = make(map[string]*BuiltinCommand)

func init() {
	for i := range builtins {
		builtinMap[builtins[i].Name] = &builtins[i]
	}
}

// Builtins returns the command table in display order.
func Builtins() []BuiltinCommand {
	out := make([]BuiltinCommand, len(builtins))
	copy(out, builtins)
	return out
}

// Result describes the effect of one Exec call.
type Result struct {
	// Lines is the full history after the command ran.
	Lines []string `json:"lines"`
	// Output is only what this command appended, including the echo line.
	Output []string `json:"output"`
	// Exit is set when the command asked for the terminal to close.
	Exit bool `json:"exit"`
}

// Shell holds the scrollback of one terminal window.
type Shell struct {
	mu         sync.Mutex
	history    []string
	maxHistory int
}

// Option configures a Shell.
type Option func(*Shell)

// WithMaxHistory caps retained lines. Non-positive values keep the default.
func WithMaxHistory(n int) Option {
	return func(s *Shell) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// New returns a shell showing the banner.
func New(opts ...Option) *Shell {
	s := &Shell{maxHistory: DefaultMaxHistory}
	for _, opt := range opts {
		opt(s)
	}
	s.history = append([]string(nil), Banner...)
	return s
}

// Exec runs one line of input. The command is matched trimmed and lower
// cased with inner spacing kept, while the echo line keeps the input as
// typed. Blank input changes nothing.
func (s *Shell) Exec(input string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	command := strings.ToLower(strings.TrimSpace(input))
	if command == "" {
		return Result{Lines: s.linesLocked()}
	}

	if command == "clear" {
		s.history = s.history[:0]
		return Result{Lines: s.linesLocked(), Output: []string{}}
	}

	output := []string{"$ " + input}
	var res Result
	if b, ok := builtinMap[command]; ok {
		output = append(output, b.Func()...)
		res.Exit = b.Name == "exit"
	} else {
		output = append(output, "Command not found: "+command)
	}

	s.history = append(s.history, output...)
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}

	res.Lines = s.linesLocked()
	res.Output = output
	return res
}

// Lines returns a copy of the scrollback.
func (s *Shell) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesLocked()
}

// Reset restores the banner, as when the terminal window is reopened.
func (s *Shell) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history[:0], Banner...)
}

func (s *Shell) linesLocked() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}
