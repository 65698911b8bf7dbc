package chat

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"
)

// mailTombstone is written over a deleted mail record's four slots before
// they are removed, matching spec.md §4.J's delMail overwrite-then-remove
// two-step, which keeps deletion idempotent against a concurrent listMail
// that already captured the slice.
const mailTombstone = "\x00deleted\x00"

// ListMail implements spec.md §4.J's `listMail`: reads `<name>.mail` as
// 4-tuples (date, time, sender, body) and prints an indexed table.
func ListMail(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	items, err := a.Store.ListRange(ctx, a.Session.Name()+".mail", 0, -1)
	if err != nil {
		return err
	}

	line(stdout, "Mail:")
	for i := 0; i+3 < len(items); i += 4 {
		date, tme, sender, body := items[i], items[i+1], items[i+2], items[i+3]
		line(stdout, "%d: %s %s %s: %s", i/4, date, tme, sender, body)
	}
	return nil
}

// SentMail implements spec.md §4.J's `sentMail <recipient> <msg>`: appends a
// date/time/sender/body record to the recipient's mail list if registered,
// else reports the error in red.
func SentMail(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	fields := strings.SplitN(strings.TrimSpace(argTail), " ", 2)
	if fields[0] == "" {
		errf(stdout, "mail to whom?")
		return nil
	}
	recipient := fields[0]
	if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
		errf(stdout, "mail saying what?")
		return nil
	}
	body := fields[1]

	registered, err := a.Store.SetIsMember(ctx, "Chatroom", recipient)
	if err != nil {
		return err
	}
	if !registered {
		errf(stdout, "%s is not a registered user", recipient)
		return nil
	}

	now := time.Now()
	sender := ""
	if a.Session != nil {
		sender = a.Session.Name()
	}
	err = a.Store.ListPushRight(ctx, recipient+".mail",
		now.Format("2006-01-02"), now.Format("15:04:05"), sender, body)
	if err != nil {
		return err
	}
	a.Collector.MessageSent("mail")
	line(stdout, "mail sent to %s", recipient)
	return nil
}

// DelMail implements spec.md §4.J's `delMail <idx>`: overwrites the four
// slots at idx*4..idx*4+3 with a sentinel, then removes up to four
// occurrences of the sentinel. An out-of-range idx is a no-op per spec.md
// §8's boundary behaviour.
func DelMail(ctx context.Context, stdin io.Reader, stdout io.Writer, argTail string, aux any) error {
	a, err := fromAux(aux)
	if err != nil {
		return err
	}

	idx, err := strconv.Atoi(strings.TrimSpace(argTail))
	if err != nil || idx < 0 {
		errf(stdout, "delete which mail?")
		return nil
	}

	key := a.Session.Name() + ".mail"
	items, err := a.Store.ListRange(ctx, key, 0, -1)
	if err != nil {
		return err
	}
	base := idx * 4
	if base+3 >= len(items) {
		return nil
	}

	for i := 0; i < 4; i++ {
		if err := a.Store.ListSet(ctx, key, base+i, mailTombstone); err != nil {
			return err
		}
	}
	if err := a.Store.ListRemove(ctx, key, 4, mailTombstone); err != nil {
		return err
	}
	line(stdout, "deleted mail %d", idx)
	return nil
}
