// Package bootstrap assembles every chatd component (durable store, command
// registry, descriptor registry, roster, auth validator, metrics, server)
// from a loaded Config and runs the network service. Both cmd/chatd (direct
// start) and cmd/chatd-admin's `server start` REPL command call Run, so the
// wiring lives in one place, the way the teacher's cmd/pop3d/main.go and
// cmd/pop3d/serve.go each assemble the same components from cfg without
// duplicating the component graph itself.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/infodancer/chatd/internal/auth"
	"github.com/infodancer/chatd/internal/chat"
	"github.com/infodancer/chatd/internal/config"
	"github.com/infodancer/chatd/internal/descriptors"
	"github.com/infodancer/chatd/internal/metrics"
	"github.com/infodancer/chatd/internal/registry"
	"github.com/infodancer/chatd/internal/roster"
	"github.com/infodancer/chatd/internal/server"
	"github.com/infodancer/chatd/internal/store"
)

// Run opens the durable store, wires the chat command set, and serves every
// configured listener until ctx is canceled. It returns nil on a clean
// cancellation, or an error describing the first fatal failure (an
// unavailable durable store is fatal at start, per spec.md §7.4).
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.OpenNutsDB(cfg.StoreDir)
	if err != nil {
		return fmt.Errorf("open durable store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing durable store", "error", err)
		}
	}()

	var collector metrics.Collector = &metrics.NoopCollector{}
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector(prometheus.DefaultRegisterer)
	}

	reg := registry.New(logger)
	RegisterBuiltins(reg)
	reg.RegisterExternal(cfg.CommandPath)

	descs := descriptors.New()
	ros := roster.New()
	validator := auth.NewPlainValidator(st)

	handler := chat.Handler(reg, descs, ros, st, validator, collector)

	srv, err := server.New(server.Config{Cfg: cfg, Logger: logger, Collector: collector})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	srv.SetHandler(handler)

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewPrometheusServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("metrics server error", "error", err)
			}
		}()
		logger.Info("metrics server started", "address", cfg.Metrics.Address, "path", cfg.Metrics.Path)
	}

	logger.Info("starting chatd", "hostname", cfg.Hostname, "listeners", len(cfg.Listeners), "store_dir", cfg.StoreDir)
	err = srv.Run(ctx)
	logger.Info("chatd stopped")
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// RegisterBuiltins wires every spec.md §4.J command into reg. name is
// registered here too even though internal/chat's dispatch special-cases it
// to run without forking when it is a line's first stage — the registry
// still needs to resolve it for pipeline.Build's lookups when it appears in
// a later stage (e.g. `who | name alice`).
func RegisterBuiltins(reg *registry.Registry) {
	reg.RegisterBuiltin("who", "", chat.Who)
	reg.RegisterBuiltin("tell", "target:message", chat.Tell)
	reg.RegisterBuiltin("yell", "message", chat.Yell)
	reg.RegisterBuiltin("name", "name", chat.Name)
	reg.RegisterBuiltin("listMail", "", chat.ListMail)
	reg.RegisterBuiltin("sentMail", "recipient:message", chat.SentMail)
	reg.RegisterBuiltin("delMail", "index", chat.DelMail)
	reg.RegisterBuiltin("Groups", "", chat.Groups)
	reg.RegisterBuiltin("listGroup", "", chat.ListGroup)
	reg.RegisterBuiltin("createGroup", "group", chat.CreateGroup)
	reg.RegisterBuiltin("delGroup", "group", chat.DelGroup)
	reg.RegisterBuiltin("addGroup", "group", chat.AddGroup)
	reg.RegisterBuiltin("leaveGroup", "group", chat.LeaveGroup)
	reg.RegisterBuiltin("kickUser", "group:user", chat.KickUser)
	reg.RegisterBuiltin("gyell", "group:message", chat.Gyell)
}
