// Package chat implements the Chat & Group Command Handlers (spec component
// J): the built-ins who, tell, yell, name, listMail, sentMail, delMail,
// Groups, listGroup, createGroup, delGroup, addGroup, leaveGroup, kickUser,
// and gyell, plus the per-connection handler that drives the Session State
// Machine and dispatches parsed lines through the Pipeline Builder/Executor.
// Grounded on internal/pop3/handler.go's per-connection loop shape and
// internal/pop3/auth_commands.go's command-handler signatures.
package chat

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/infodancer/chatd/internal/metrics"
	"github.com/infodancer/chatd/internal/roster"
	"github.com/infodancer/chatd/internal/session"
	"github.com/infodancer/chatd/internal/store"
)

// Aux is the auxiliary context every built-in receives (spec.md §3's
// PipelineStage.auxiliary). Design Notes §9 calls for "global static
// rosters → explicit server context"; Aux is that context, carrying the
// caller's session plus the shared collaborators every handler needs.
type Aux struct {
	Session   *session.Session
	Roster    *roster.Roster
	Store     store.Store
	Collector metrics.Collector
	Logger    *slog.Logger
}

func fromAux(aux any) (*Aux, error) {
	a, ok := aux.(*Aux)
	if !ok || a == nil {
		return nil, fmt.Errorf("chat: handler invoked without *chat.Aux")
	}
	return a, nil
}

// errColor renders semantic/durable-store violation messages in red, per
// spec.md §7.3's "red-ink convention for durable-store violations" (the
// teacher's internal/pop3 package has no equivalent since POP3 has no
// interactive terminal, so this is grounded directly on the spec text and
// on github.com/fatih/color's ordinary Fprintf usage).
var errColor = color.New(color.FgRed)

// errf writes a red-ink message to w. Semantic/arity errors use this
// instead of returning an error, so the protocol keeps going per spec.md
// §7.3: the built-in still returns nil (success).
func errf(w io.Writer, format string, args ...any) {
	errColor.Fprintf(w, format+"\n", args...)
}

// line writes a plain informational line to w.
func line(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
