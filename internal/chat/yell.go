package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Yell implements spec.md §4.J's `yell <msg>`: delivers msg to every live
// session, including the caller. The caller's own copy is written to this
// stage's stdout (so `yell hi | cat` pipes it, per spec.md §8 scenario 3)
// rather than directly to the caller's socket.
func Yell(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	msg := strings.TrimSpace(argTail)
	if msg == "" {
		errf(stdout, "what are you yelling?")
		return nil
	}

	name := ""
	if a.Session != nil {
		name = a.Session.Name()
	}
	text := fmt.Sprintf("<user:%s    yelled>: %s\n", name, msg)

	for _, e := range a.Roster.Snapshot() {
		if e.Name == "" {
			continue
		}
		if a.Session != nil && e.ID == a.Session.ID {
			if _, err := fmt.Fprint(stdout, text); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprint(e.Conn, text)
	}
	a.Collector.MessageSent("yell")
	return nil
}
