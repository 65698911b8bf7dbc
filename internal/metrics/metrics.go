// Package metrics provides interfaces and implementations for collecting
// chatd server metrics. This package defines the Collector interface for
// recording metrics and the Server interface for exposing them.
package metrics

import "context"

// Collector defines the interface for recording chatd server metrics.
type Collector interface {
	// Connection metrics
	ConnectionOpened()
	ConnectionClosed()

	// Authentication metrics
	AuthAttempt(success bool)

	// Command metrics
	CommandProcessed(command string)

	// Chat/group metrics
	MessageSent(kind string) // "tell", "yell", "gyell", "mail"
	GroupOperation(op string)
	PipelineStages(count int)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
