package chat

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Groups implements spec.md §4.J's `Groups`: lists every registered group.
func Groups(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	names, err := a.Store.SetMembers(ctx, "Chatroom.group")
	if err != nil {
		return err
	}
	sort.Strings(names)
	line(stdout, "Groups:")
	for _, g := range names {
		line(stdout, "  %s", g)
	}
	return nil
}

// ListGroup implements spec.md §4.J's `listGroup`: lists the caller's own
// groups.
func ListGroup(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	groups, err := a.Store.ListRange(ctx, a.Session.Name()+".group", 0, -1)
	if err != nil {
		return err
	}
	line(stdout, "Your groups:")
	for _, g := range groups {
		line(stdout, "  %s", g)
	}
	return nil
}

// CreateGroup implements spec.md §4.J's `createGroup <g>`: registers g and
// makes the caller its owner (score 0).
func CreateGroup(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	g := strings.TrimSpace(argTail)
	if g == "" {
		errf(stdout, "create which group?")
		return nil
	}
	exists, err := a.Store.SetIsMember(ctx, "Chatroom.group", g)
	if err != nil {
		return err
	}
	if exists {
		errf(stdout, "group %s already exists", g)
		return nil
	}

	if _, err := a.Store.SetAdd(ctx, "Chatroom.group", g); err != nil {
		return err
	}
	if _, err := a.Store.ZSetAdd(ctx, g, 0, a.Session.Name()); err != nil {
		return err
	}
	if err := a.Store.ListPushRight(ctx, a.Session.Name()+".group", g); err != nil {
		return err
	}
	a.Collector.GroupOperation("createGroup")
	line(stdout, "created group %s", g)
	return nil
}

// DelGroup implements spec.md §4.J's `delGroup <g>`: owner-only deletion
// that also scrubs g from every member's `<m>.group` list.
func DelGroup(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	g := strings.TrimSpace(argTail)
	if g == "" {
		errf(stdout, "delete which group?")
		return nil
	}

	rank, ok, err := a.Store.ZSetRank(ctx, g, a.Session.Name())
	if err != nil {
		return err
	}
	if !ok || rank != 0 {
		errf(stdout, "you do not own %s", g)
		return nil
	}

	members, err := a.Store.ZSetRange(ctx, g, 0, -1)
	if err != nil {
		return err
	}
	if _, err := a.Store.SetRemove(ctx, "Chatroom.group", g); err != nil {
		return err
	}
	for _, m := range members {
		if err := a.Store.ListRemove(ctx, m+".group", 0, g); err != nil {
			return err
		}
	}
	if err := a.Store.KeyDelete(ctx, g); err != nil {
		return err
	}
	a.Collector.GroupOperation("delGroup")
	line(stdout, "deleted group %s", g)
	return nil
}

// AddGroup implements spec.md §4.J's `addGroup <g>`: joins g as a
// non-owner member (score 10). Idempotent — a caller already in g gets a
// plain notice rather than a duplicated `<self>.group` entry.
func AddGroup(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	g := strings.TrimSpace(argTail)
	if g == "" {
		errf(stdout, "join which group?")
		return nil
	}

	exists, err := a.Store.SetIsMember(ctx, "Chatroom.group", g)
	if err != nil {
		return err
	}
	if !exists {
		errf(stdout, "no such group %s", g)
		return nil
	}

	_, alreadyMember, err := a.Store.ZSetRank(ctx, g, a.Session.Name())
	if err != nil {
		return err
	}
	if alreadyMember {
		line(stdout, "you are already in %s", g)
		return nil
	}

	if _, err := a.Store.ZSetAdd(ctx, g, 10, a.Session.Name()); err != nil {
		return err
	}
	if err := a.Store.ListPushRight(ctx, a.Session.Name()+".group", g); err != nil {
		return err
	}
	a.Collector.GroupOperation("addGroup")
	line(stdout, "joined group %s", g)
	return nil
}

// LeaveGroup implements spec.md §4.J's `leaveGroup <g>`: removes the
// caller; delegates to DelGroup if membership would drop below two;
// promotes a successor owner if the caller was owner and others remain.
func LeaveGroup(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	g := strings.TrimSpace(argTail)
	if g == "" {
		errf(stdout, "leave which group?")
		return nil
	}
	name := a.Session.Name()

	rank, ok, err := a.Store.ZSetRank(ctx, g, name)
	if err != nil {
		return err
	}
	if !ok {
		errf(stdout, "you are not in %s", g)
		return nil
	}

	members, err := a.Store.ZSetRange(ctx, g, 0, -1)
	if err != nil {
		return err
	}
	if len(members) < 2 {
		return DelGroup(ctx, stdin, stdout, g, aux)
	}

	if rank == 0 {
		var successor string
		for _, m := range members {
			if m != name {
				successor = m
				break
			}
		}
		if successor != "" {
			if _, err := a.Store.ZSetAdd(ctx, g, 0, successor); err != nil {
				return err
			}
		}
	}

	if _, err := a.Store.ZSetRemove(ctx, g, name); err != nil {
		return err
	}
	if err := a.Store.ListRemove(ctx, name+".group", 0, g); err != nil {
		return err
	}
	a.Collector.GroupOperation("leaveGroup")
	line(stdout, "left group %s", g)
	return nil
}

// KickUser implements spec.md §4.J's `kickUser <g> <u1> <u2> …`:
// owner-only removal of one or more members.
func KickUser(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	fields := strings.Fields(argTail)
	if len(fields) < 2 {
		errf(stdout, "kick whom from which group?")
		return nil
	}
	g := fields[0]
	targets := fields[1:]

	rank, ok, err := a.Store.ZSetRank(ctx, g, a.Session.Name())
	if err != nil {
		return err
	}
	if !ok || rank != 0 {
		errf(stdout, "you do not own %s", g)
		return nil
	}

	for _, u := range targets {
		if _, err := a.Store.ZSetRemove(ctx, g, u); err != nil {
			return err
		}
		if err := a.Store.ListRemove(ctx, u+".group", 0, g); err != nil {
			return err
		}
	}
	a.Collector.GroupOperation("kickUser")
	line(stdout, "kicked %s from %s", strings.Join(targets, ", "), g)
	return nil
}

// Gyell implements spec.md §4.J's `gyell <g> <msg>`: delivers a tell-style
// message to every member of g. The caller must be a member.
func Gyell(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}
	fields := strings.SplitN(strings.TrimSpace(argTail), " ", 2)
	if fields[0] == "" {
		errf(stdout, "yell to which group?")
		return nil
	}
	g := fields[0]
	if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
		errf(stdout, "what are you yelling?")
		return nil
	}
	msg := fields[1]

	_, ok, err := a.Store.ZSetRank(ctx, g, a.Session.Name())
	if err != nil {
		return err
	}
	if !ok {
		errf(stdout, "you are not in %s", g)
		return nil
	}

	members, err := a.Store.ZSetRange(ctx, g, 0, -1)
	if err != nil {
		return err
	}
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	text := fmt.Sprintf("<group:%s><user:%s    yelled>: %s\n", g, a.Session.Name(), msg)
	for _, e := range a.Roster.Snapshot() {
		if !memberSet[e.Name] {
			continue
		}
		if e.ID == a.Session.ID {
			if _, err := fmt.Fprint(stdout, text); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprint(e.Conn, text)
	}
	a.Collector.MessageSent("gyell")
	return nil
}
