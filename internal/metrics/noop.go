package metrics

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// ConnectionOpened is a no-op.
func (n *NoopCollector) ConnectionOpened() {}

// ConnectionClosed is a no-op.
func (n *NoopCollector) ConnectionClosed() {}

// AuthAttempt is a no-op.
func (n *NoopCollector) AuthAttempt(success bool) {}

// CommandProcessed is a no-op.
func (n *NoopCollector) CommandProcessed(command string) {}

// MessageSent is a no-op.
func (n *NoopCollector) MessageSent(kind string) {}

// GroupOperation is a no-op.
func (n *NoopCollector) GroupOperation(op string) {}

// PipelineStages is a no-op.
func (n *NoopCollector) PipelineStages(count int) {}
