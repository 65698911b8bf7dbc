// Package session is the Session State Machine (spec component H): the
// per-connection FSM driving the prompt/auth/input/exec lifecycle described
// in spec.md §4.H, modeled on internal/pop3/session.go's State-enum-plus-
// methods shape.
package session

import (
	"net"

	"github.com/infodancer/chatd/internal/roster"
)

// State is one of the six states spec.md §4.H enumerates.
type State int

const (
	// NoName is the initial state: the connection is open but the server
	// has not yet prompted for a name.
	NoName State = iota

	// AwaitingName: the "Who're you: " prompt has been written; the next
	// input line is filtered and treated as the claimed name.
	AwaitingName

	// AwaitingPassword: the "Password: " prompt has been written; the next
	// input line is checked against the stored password (or becomes it,
	// for a brand-new name).
	AwaitingPassword

	// Ready: authenticated, waiting for the next outer loop pass to prompt.
	Ready

	// Prompted: the "<name>> " prompt has been written; the next input
	// line is parsed and dispatched as a command pipeline.
	Prompted

	// Executing: a supervisor goroutine is running the dispatched pipeline;
	// the session does not accept new input until it finishes.
	Executing
)

// String renders a State the way logs and tests expect to see it.
func (s State) String() string {
	switch s {
	case NoName:
		return "NO_NAME"
	case AwaitingName:
		return "AWAITING_NAME"
	case AwaitingPassword:
		return "AWAITING_PASSWORD"
	case Ready:
		return "READY"
	case Prompted:
		return "PROMPTED"
	case Executing:
		return "EXECUTING"
	default:
		return "UNKNOWN"
	}
}

// Session is one connection's FSM plus the identity it has accumulated.
// name is empty in NoName and AwaitingName; SetName records the claimed
// name on entering AwaitingPassword, and it stays set from then on.
type Session struct {
	ID    roster.ID
	Conn  net.Conn
	state State
	name  string

	// pendingDone signals completion of the pipeline goroutine launched
	// while Executing, so the server loop's non-blocking reap can check it
	// without blocking, mirroring the non-blocking waitpid of spec.md §4.I.
	pendingDone chan error
}

// New creates a session in the initial NoName state for an accepted conn.
func New(id roster.ID, conn net.Conn) *Session {
	return &Session{ID: id, Conn: conn, state: NoName}
}

// State returns the current FSM state.
func (s *Session) State() State {
	return s.state
}

// Name returns the claimed name (set from AwaitingPassword on, and the
// authenticated name once Ready), or "" before a name has been claimed.
func (s *Session) Name() string {
	return s.name
}

// EnterAwaitingName transitions NoName -> AwaitingName, after the server
// has written the "Who're you: " prompt.
func (s *Session) EnterAwaitingName() {
	s.state = AwaitingName
}

// SetName records the claimed name and transitions to AwaitingPassword;
// the server writes the "Password: " prompt right after.
func (s *Session) SetName(name string) {
	s.name = name
	s.state = AwaitingPassword
}

// ResetToNoName aborts an in-progress name/password exchange, e.g. when the
// filtered name input was empty, per spec.md §4.H's AwaitingName row.
func (s *Session) ResetToNoName() {
	s.name = ""
	s.state = NoName
}

// Authenticate transitions AwaitingPassword -> Ready after a successful
// password check.
func (s *Session) Authenticate() {
	s.state = Ready
}

// RejectPassword keeps the session in AwaitingPassword after a mismatch, so
// the caller can re-write the "Password: " prompt.
func (s *Session) RejectPassword() {
	s.state = AwaitingPassword
}

// EnterPrompted transitions Ready -> Prompted, after the server has written
// the "<name>> " prompt.
func (s *Session) EnterPrompted() {
	s.state = Prompted
}

// Rename updates the authenticated name in place, used by the `name`
// built-in, which spec.md §4.H requires to run in the parent without
// forking, so the FSM's own name field and the roster's stay consistent.
func (s *Session) Rename(newName string) {
	s.name = newName
}

// EnterReady forces a transition back to Ready, used after a command that
// runs in the parent without forking (currently only `name`) completes:
// the Prompted -> Executing -> Ready path never applies since no supervisor
// was ever started.
func (s *Session) EnterReady() {
	s.state = Ready
}

// BeginExecuting transitions Prompted -> Executing and records the channel
// the dispatched pipeline goroutine will signal on.
func (s *Session) BeginExecuting(done chan error) {
	s.state = Executing
	s.pendingDone = done
}

// TryReap performs the non-blocking-waitpid equivalent of spec.md §4.I: if
// the pipeline goroutine has finished, it transitions Executing -> Ready
// and returns the error it finished with (nil on success) and true. If
// still running, returns (nil, false) without blocking.
func (s *Session) TryReap() (error, bool) {
	if s.state != Executing || s.pendingDone == nil {
		return nil, false
	}
	select {
	case err := <-s.pendingDone:
		s.pendingDone = nil
		s.state = Ready
		return err, true
	default:
		return nil, false
	}
}
