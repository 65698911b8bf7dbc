package chat

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/infodancer/chatd/internal/auth"
	"github.com/infodancer/chatd/internal/descriptors"
	"github.com/infodancer/chatd/internal/logging"
	"github.com/infodancer/chatd/internal/metrics"
	"github.com/infodancer/chatd/internal/pipeline"
	"github.com/infodancer/chatd/internal/registry"
	"github.com/infodancer/chatd/internal/roster"
	"github.com/infodancer/chatd/internal/session"
	"github.com/infodancer/chatd/internal/store"
	"github.com/infodancer/chatd/internal/tokenize"
)

// reapPollInterval is how often the connection goroutine polls
// session.TryReap while a pipeline is Executing. Go gives every connection
// its own goroutine, so nothing else is starved by this wait the way the
// original single-threaded accept loop would have been — the poll is kept
// only to preserve the Executing/non-blocking-reap shape of spec.md §4.H/I.
const reapPollInterval = 10 * time.Millisecond

// Handler builds a server.ConnectionHandler-compatible function (matching
// its func(ctx, net.Conn) signature structurally) that drives one accepted
// connection through the Session State Machine end to end: name/password
// prompts, then command pipelines, until the client disconnects.
func Handler(reg *registry.Registry, descs *descriptors.Registry, ros *roster.Roster, st store.Store, validator *auth.PlainValidator, collector metrics.Collector) func(ctx context.Context, conn net.Conn) {
	return func(ctx context.Context, conn net.Conn) {
		logger := logging.FromContext(ctx)
		entry := ros.Add(conn)
		sess := session.New(entry.ID, conn)

		defer func() {
			if name := sess.Name(); name != "" {
				if _, err := st.SetRemove(ctx, "Chatroom.online", name); err != nil {
					logger.Warn("removing online marker on disconnect", "name", name, "error", err)
				}
			}
			_ = ros.Close(entry.ID)
		}()

		reader := bufio.NewReader(conn)

		for {
			switch sess.State() {
			case session.NoName:
				if err := writePrompt(conn, "Who're you: "); err != nil {
					return
				}
				sess.EnterAwaitingName()

			case session.AwaitingName:
				input, err := readLine(reader)
				if err != nil {
					return
				}
				name := filterPrintable(input)
				if name == "" {
					sess.ResetToNoName()
					continue
				}
				if err := registerName(ctx, st, name); err != nil {
					logger.Error("registering name", "error", err)
					return
				}
				sess.SetName(name)
				if err := writePrompt(conn, "Password: "); err != nil {
					return
				}

			case session.AwaitingPassword:
				input, err := readLine(reader)
				if err != nil {
					return
				}
				pwd := filterPrintable(input)
				if err := validator.Check(ctx, sess.Name(), pwd); err != nil {
					collector.AuthAttempt(false)
					sess.RejectPassword()
					if err := writePrompt(conn, "Password: "); err != nil {
						return
					}
					continue
				}
				collector.AuthAttempt(true)
				if _, err := st.SetAdd(ctx, "Chatroom.online", sess.Name()); err != nil {
					logger.Error("marking online", "error", err)
					return
				}
				ros.Rename(entry.ID, sess.Name())
				sess.Authenticate()
				if _, err := fmt.Fprintf(conn, "Welcome %s!\n", sess.Name()); err != nil {
					return
				}

			case session.Ready:
				if err := writePrompt(conn, sess.Name()+"> "); err != nil {
					return
				}
				sess.EnterPrompted()

			case session.Prompted:
				input, err := readLine(reader)
				if err != nil {
					return
				}
				if strings.TrimSpace(input) == "" {
					continue
				}
				dispatch(ctx, input, reg, descs, sess, ros, st, collector, logger)
			}
		}
	}
}

func registerName(ctx context.Context, st store.Store, name string) error {
	exists, err := st.SetIsMember(ctx, "Chatroom", name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = st.SetAdd(ctx, "Chatroom", name)
	return err
}

// dispatch parses one input line and runs it, either in the parent (the
// `name` special case, spec.md §4.H) or as a forked-equivalent pipeline
// whose completion is awaited through the Executing/TryReap poll.
func dispatch(ctx context.Context, input string, reg *registry.Registry, descs *descriptors.Registry, sess *session.Session, ros *roster.Roster, st store.Store, collector metrics.Collector, logger *slog.Logger) {
	stages := tokenize.Split(input)
	if len(stages) == 0 {
		return
	}

	aux := &Aux{Session: sess, Roster: ros, Store: st, Collector: collector, Logger: logger}

	if stages[0].Name == "name" {
		tail := ""
		if stages[0].ArgTail != nil {
			tail = *stages[0].ArgTail
		}
		if err := Name(ctx, sess.Conn, sess.Conn, tail, aux); err != nil {
			logger.Warn("name failed", "error", err)
		}
		collector.CommandProcessed("name")
		sess.EnterReady()
		return
	}

	p, err := pipeline.Build(stages, reg, descs)
	if err != nil {
		fmt.Fprintf(sess.Conn, "%s\n", err.Error())
		sess.EnterReady()
		return
	}

	collector.PipelineStages(len(p.Stages))
	for _, s := range p.Stages {
		collector.CommandProcessed(s.Command.Name)
	}

	done := make(chan error, 1)
	sess.BeginExecuting(done)

	go func() {
		done <- pipeline.Run(ctx, p, pipeline.IO{Stdin: sess.Conn, Stdout: sess.Conn}, aux)
	}()

	for {
		if err, ok := sess.TryReap(); ok {
			if err != nil {
				logger.Warn("pipeline error", "error", err)
			}
			return
		}
		time.Sleep(reapPollInterval)
	}
}

func writePrompt(conn net.Conn, prompt string) error {
	_, err := fmt.Fprint(conn, prompt)
	return err
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// filterPrintable keeps only ASCII 32-126, matching spec.md §4.H/§6's
// "filter to printable subset" for the claimed name and password.
func filterPrintable(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r <= 126 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
