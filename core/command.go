package core

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/shlex"
)

// CommandHandler handles one console command. args[0] is the command name.
// Output goes to out; a returned error is reported by Dispatch.
type CommandHandler func(args []string, out io.Writer) error

// Command represents a console command
type Command struct {
	ID      uint16
	Name    string
	Usage   string // Printed on ErrUsage and by "help {name}"
	Handler CommandHandler
}

var (
	// ErrUsage makes Dispatch print the command's usage text
	ErrUsage = errors.New("usage")

	ErrUnknownCommand = errors.New("command not found")
)

// CommandRegistry holds all registered commands
type CommandRegistry struct {
	mu         sync.RWMutex
	commands   map[uint16]*Command
	nameToID   map[string]uint16
	nextID     uint16
	dictionary string // One line per command, for "help"
}

var globalRegistry = NewCommandRegistry()

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
		nextID:   0,
	}
}

// RegisterCommand registers a command handler in the global registry
func RegisterCommand(name string, usage string, handler CommandHandler) uint16 {
	return globalRegistry.Register(name, usage, handler)
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, usage string, handler CommandHandler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if already registered
	if id, exists := r.nameToID[name]; exists {
		return id
	}

	id := r.nextID
	r.nextID++

	cmd := &Command{
		ID:      id,
		Name:    name,
		Usage:   usage,
		Handler: handler,
	}

	r.commands[id] = cmd
	r.nameToID[name] = id

	r.rebuildDictionary()

	return id
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// Lookup retrieves a command by name
func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Names returns the registered command names in sorted order
func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.nameToID))
	for name := range r.nameToID {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch tokenizes line and runs the matching command. Usage text and
// error messages are written to out as well as returned, so a serial
// console user sees them.
func (r *CommandRegistry) Dispatch(line string, out io.Writer) error {
	args, err := shlex.Split(line)
	if err != nil {
		io.WriteString(out, err.Error()+"\n")
		return err
	}
	if len(args) == 0 {
		return nil
	}

	cmd, ok := r.Lookup(args[0])
	if !ok || cmd.Handler == nil {
		io.WriteString(out, ErrUnknownCommand.Error()+"\n")
		return ErrUnknownCommand
	}

	err = cmd.Handler(args, out)
	switch {
	case err == nil:
	case errors.Is(err, ErrUsage):
		io.WriteString(out, cmd.Usage)
	default:
		io.WriteString(out, err.Error()+"\n")
	}
	return err
}

// GetDictionary returns the first usage line of every command, in
// registration order
func (r *CommandRegistry) GetDictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dictionary
}

// rebuildDictionary rebuilds the dictionary string
// Must be called with lock held
func (r *CommandRegistry) rebuildDictionary() {
	var b strings.Builder
	for i := uint16(0); i < r.nextID; i++ {
		cmd, ok := r.commands[i]
		if !ok {
			continue
		}
		line := cmd.Name
		if cmd.Usage != "" {
			line, _, _ = strings.Cut(cmd.Usage, "\n")
			line = strings.TrimPrefix(line, "usage: ")
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	r.dictionary = b.String()
}

// DispatchCommand is a convenience function using the global registry
func DispatchCommand(line string, out io.Writer) error {
	return globalRegistry.Dispatch(line, out)
}

// GetGlobalRegistry returns the global command registry
func GetGlobalRegistry() *CommandRegistry {
	return globalRegistry
}
