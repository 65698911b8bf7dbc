package chat

import (
	"context"
	"io"
	"strings"
)

// Name implements spec.md §4.J's `name <new>`: atomic rename of the caller.
// Spec.md §4.H and §5 require this to run in the parent without forking,
// since it mutates roster identity and durable keys other concurrent
// handlers assume stable; the connection handler special-cases `name`
// before building a pipeline and calls this directly rather than dispatching
// it through the Pipeline Executor.
func Name(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	newName := strings.TrimSpace(argTail)
	if newName == "" {
		errf(stdout, "change your name to what?")
		return nil
	}

	oldName := ""
	if a.Session != nil {
		oldName = a.Session.Name()
	}
	if oldName == "" {
		errf(stdout, "you have no name yet")
		return nil
	}

	exists, err := a.Store.SetIsMember(ctx, "Chatroom", newName)
	if err != nil {
		return err
	}
	if exists {
		errf(stdout, "User name exist, Please change")
		return nil
	}

	if _, err := a.Store.SetAdd(ctx, "Chatroom", newName); err != nil {
		return err
	}

	groups, err := a.Store.ListRange(ctx, oldName+".group", 0, -1)
	if err != nil {
		return err
	}
	for _, g := range groups {
		rank, ok, err := a.Store.ZSetRank(ctx, g, oldName)
		if err != nil {
			return err
		}
		score := 10.0
		if ok && rank == 0 {
			score = 0
		}
		if _, err := a.Store.ZSetAdd(ctx, g, score, newName); err != nil {
			return err
		}
		if _, err := a.Store.ZSetRemove(ctx, g, oldName); err != nil {
			return err
		}
		if err := a.Store.ListPushRight(ctx, newName+".group", g); err != nil {
			return err
		}
	}

	if _, err := a.Store.SetAdd(ctx, "Chatroom.online", newName); err != nil {
		return err
	}
	if _, err := a.Store.SetRemove(ctx, "Chatroom.online", oldName); err != nil {
		return err
	}
	if _, err := a.Store.SetRemove(ctx, "Chatroom", oldName); err != nil {
		return err
	}
	if err := a.Store.KeyDelete(ctx, oldName, oldName+".group", oldName+".mail"); err != nil {
		return err
	}

	a.Roster.Rename(a.Session.ID, newName)
	a.Session.Rename(newName)

	line(stdout, "you are now known as %s", newName)
	return nil
}
