// Package registry is the Command Registry (spec component A): the set of
// known command names, whether each is built in or an external binary, and
// the parameter hints attached to each. It is populated once at server init
// and never mutated afterward.
package registry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Kind distinguishes a built-in handler from an external executable.
type Kind int

const (
	Builtin Kind = iota
	External
)

// Handler is the signature every built-in command implements. Built-ins run
// as goroutines; stdin/stdout are the stage's wired endpoints: an inter-stage
// pipe end where the stage has a pipe neighbour, otherwise the session's own
// connection (which is also what `name` receives when the connection handler
// runs it directly). argTail is the verbatim remainder of the input line
// after the command name. aux carries whatever per-command context the
// handler needs (for the chat built-ins, the caller's session plus the
// shared roster and store).
type Handler func(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error

// Command is one registered name: a built-in handler or an external binary.
type Command struct {
	Name       string
	FullName   string // absolute path for External, equal to Name for Builtin
	Kind       Kind
	Handler    Handler // nil for External; the executor execs FullName instead
	ParamHints []string
}

// entry links a Command into the insertion-order chain the registry keeps so
// that lookups by name can prefer the most recently registered match,
// mirroring the original program's prepend-on-duplicate semantics.
type entry struct {
	cmd  Command
	next *entry // previous head at insertion time
}

// Registry holds every known command. The zero value is not usable; call New.
type Registry struct {
	log  *slog.Logger
	head map[string]*entry
}

// New creates an empty registry.
func New(log *slog.Logger) *Registry {
	return &Registry{
		log:  log,
		head: make(map[string]*entry),
	}
}

// RegisterBuiltin adds a built-in command. paramHints is split on `:` or
// whitespace to produce the ordered hint sequence spec.md §4.A calls for.
// A later call with the same name shadows an earlier one (last-inserted
// wins) without removing the earlier entry, matching the original
// prepend-to-a-singly-linked-list behaviour of register_builtin.
func (r *Registry) RegisterBuiltin(name, paramHintString string, handler Handler) {
	r.push(Command{
		Name:       name,
		FullName:   name,
		Kind:       Builtin,
		Handler:    handler,
		ParamHints: splitHints(paramHintString),
	})
}

// RegisterExternal scans every directory in a colon-separated path for
// regular, executable files and registers one Command per file, named after
// its basename. Missing directories are logged and skipped, not fatal.
// Duplicates across directories follow last-inserted-wins, exactly as
// spec.md §4.A specifies.
func (r *Registry) RegisterExternal(dirpath string) {
	for _, dir := range strings.Split(dirpath, ":") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			r.log.Warn("external command directory unavailable", "dir", dir, "error", err)
			continue
		}
		for _, de := range entries {
			if de.IsDir() {
				continue
			}
			full := filepath.Join(dir, de.Name())
			if !isExecutable(full) {
				continue
			}
			r.push(Command{
				Name:     de.Name(),
				FullName: full,
				Kind:     External,
			})
		}
	}
}

// Lookup returns the most recently registered Command with the given name,
// or false if none is registered.
func (r *Registry) Lookup(name string) (Command, bool) {
	e, ok := r.head[name]
	if !ok {
		return Command{}, false
	}
	return e.cmd, true
}

func (r *Registry) push(cmd Command) {
	r.head[cmd.Name] = &entry{cmd: cmd, next: r.head[cmd.Name]}
}

func splitHints(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
