package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Tell implements spec.md §4.J's `tell <name> <msg>`: writes directly to
// the target session's live connection (not to this stage's stdout, which
// is reserved for the caller's own feedback), or reports the target
// offline.
func Tell(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	fields := strings.SplitN(strings.TrimSpace(argTail), " ", 2)
	if fields[0] == "" {
		errf(stdout, "who are you telling?")
		return nil
	}
	target := fields[0]
	if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
		errf(stdout, "what are you telling?")
		return nil
	}
	msg := fields[1]

	entry, ok := a.Roster.Lookup(target)
	if !ok {
		errf(stdout, "%s is offline, try again later", target)
		return nil
	}

	name := ""
	if a.Session != nil {
		name = a.Session.Name()
	}
	if _, err := fmt.Fprintf(entry.Conn, "<user:%s    told you>: %s\n", name, msg); err != nil {
		return err
	}
	a.Collector.MessageSent("tell")
	return nil
}
