// Command chatd-admin is the administrative bootstrap described in
// spec.md §6: an interactive REPL that accepts `server start` to bring up
// the network service and `quit` to terminate. Lines are space-delimited
// and persisted to the history file after every accepted line.
//
// `server start` never returns to the prompt: it blocks the REPL goroutine
// running the network service, the same one-way transition
// original_source/src/console.c's do_server makes into its blocking accept
// loop. From that point, only an external SIGINT/SIGTERM ends the process.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	prompt "github.com/c-bata/go-prompt"
	"golang.org/x/sys/unix"

	"github.com/infodancer/chatd/internal/bootstrap"
	"github.com/infodancer/chatd/internal/config"
	"github.com/infodancer/chatd/internal/logging"
)

func main() {
	flags := config.ParseFlags()
	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	repl := newAdmin(&cfg, logger)
	os.Exit(repl.run(ctx))
}

type admin struct {
	cfg     *config.Config
	logger  *slog.Logger
	history []string
}

func newAdmin(cfg *config.Config, logger *slog.Logger) *admin {
	return &admin{cfg: cfg, logger: logger, history: loadHistory(cfg.HistoryFile)}
}

func loadHistory(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func (a *admin) appendHistory(line string) {
	a.history = append(a.history, line)
	if a.cfg.HistoryFile == "" {
		return
	}
	f, err := os.OpenFile(a.cfg.HistoryFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		a.logger.Warn("writing history file", "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}

// run drives the REPL loop. `server start` blocks here until ctx is
// canceled and never returns to the prompt; `quit` (only reachable before
// that point) exits cleanly. Returns the process exit code.
func (a *admin) run(ctx context.Context) int {
	for {
		line := prompt.Input(a.prefix(), a.completer, prompt.OptionHistory(a.history))
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		a.appendHistory(line)

		fields := strings.Fields(strings.ReplaceAll(line, "|", " "))
		switch fields[0] {
		case "server":
			if len(fields) >= 2 && fields[1] == "start" {
				return a.startServer(ctx)
			}
			fmt.Println("usage: server start")
		case "quit":
			return a.quit()
		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

func (a *admin) prefix() string {
	return a.cfg.Hostname + "> "
}

func (a *admin) completer(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "server start", Description: "start the network service"},
		{Text: "quit", Description: "terminate the admin console"},
	}
	return prompt.FilterHasPrefix(suggestions, d.TextBeforeCursor(), true)
}

// startServer runs the network service in this goroutine until ctx is
// canceled by an external SIGINT/SIGTERM, matching spec.md §6's one-way
// `server start` transition. Returns 1 on a bootstrap failure, 0 on a
// clean signal-driven shutdown.
func (a *admin) startServer(ctx context.Context) int {
	fmt.Println("server started")
	if err := bootstrap.Run(ctx, a.cfg, a.logger); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return 1
	}
	return 0
}

// quit is only reachable before `server start` blocks the loop. It
// escalates by sending itself SIGINT, the same mechanism spec.md §4.E/§5
// describes for the built-in `quit` ("escalates by SIGINT to the original
// parent PID"; here the admin console is its own process, so it signals
// itself), letting the one signal handler registered in main own every
// shutdown path rather than returning a second, separate one.
func (a *admin) quit() int {
	if err := unix.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		a.logger.Warn("signalling self to quit", "error", err)
	}
	fmt.Println("bye")
	return 0
}
