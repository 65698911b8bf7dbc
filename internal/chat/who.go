package chat

import (
	"context"
	"io"
	"sort"
)

// Who implements spec.md §4.J's `who`: prints every live session (self
// marked with `*`, others with a space) then the registered-but-offline
// names with the placeholder offline marker.
func Who(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	line(stdout, "Users:")
	for _, e := range a.Roster.Snapshot() {
		if e.Name == "" {
			continue
		}
		marker := " "
		if a.Session != nil && e.ID == a.Session.ID {
			marker = "*"
		}
		addr := "unknown"
		if e.Conn != nil {
			if ra := e.Conn.RemoteAddr(); ra != nil {
				addr = ra.String()
			}
		}
		line(stdout, "%s %s  %s", marker, e.Name, addr)
	}

	offline, err := a.Store.SetDiff(ctx, "Chatroom", "Chatroom.online")
	if err != nil {
		return err
	}
	sort.Strings(offline)
	for _, name := range offline {
		line(stdout, "  %s  offline:-1", name)
	}
	return nil
}
