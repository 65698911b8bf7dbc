// Package pipeline implements the Pipeline Builder and Pipeline Executor
// (spec components D and E): resolving tokenised stages against the command
// registry, wiring inter-stage pipes, and running the resulting queue with
// built-ins as goroutines and externals as real subprocesses sharing the
// same pipe plumbing.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/infodancer/chatd/internal/descriptors"
	"github.com/infodancer/chatd/internal/registry"
	"github.com/infodancer/chatd/internal/tokenize"
)

// Stage is a queued, resolved pipeline stage (spec.md §3 PipelineStage).
// StdinSrc/StdoutDst are nil when the stage inherits the session's own
// socket at that end (first stage's stdin, last stage's stdout).
type Stage struct {
	Command   registry.Command
	ArgTail   string
	StdinSrc  *os.File
	StdoutDst *os.File
	pipeIn    *descriptors.Entry // tracked read end this stage owns, if any
	pipeOut   *descriptors.Entry // tracked write end this stage owns, if any
}

// Pipeline is the ordered queue the Builder produces and the Executor runs.
type Pipeline struct {
	Stages []Stage
	descs  *descriptors.Registry // registry the Builder tracked this line's pipes in
}

// NotFoundError reports a stage whose command name has no registry entry.
// The Pipeline Builder aborts the whole line on the first one it meets.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command not found: %s doesn't exit", e.Name)
}

// Build resolves every tokenised stage against reg and wires the pipes
// between them via descs, per spec.md §4.D. On the first unresolved stage
// name it aborts and closes every pipe already allocated for this line.
func Build(stages []tokenize.Stage, reg *registry.Registry, descs *descriptors.Registry) (*Pipeline, error) {
	queue := make([]Stage, 0, len(stages))
	for _, ts := range stages {
		cmd, ok := reg.Lookup(ts.Name)
		if !ok {
			closePipes(queue, descs)
			return nil, &NotFoundError{Name: ts.Name}
		}
		argTail := ""
		if ts.ArgTail != nil {
			argTail = *ts.ArgTail
		}
		queue = append(queue, Stage{Command: cmd, ArgTail: argTail})
	}

	for k := 0; k < len(queue)-1; k++ {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes(queue, descs)
			return nil, fmt.Errorf("allocate pipe for stage %d: %w", k, err)
		}
		entry := descs.Track(r, w, descriptors.Pipe)
		queue[k].StdoutDst = w
		queue[k].pipeOut = entry
		queue[k+1].StdinSrc = r
		queue[k+1].pipeIn = entry
	}

	return &Pipeline{Stages: queue, descs: descs}, nil
}

func closePipes(queue []Stage, descs *descriptors.Registry) {
	seen := make(map[*descriptors.Entry]bool)
	for _, s := range queue {
		for _, e := range []*descriptors.Entry{s.pipeIn, s.pipeOut} {
			if e != nil && !seen[e] {
				seen[e] = true
				_ = descs.CloseOne(e)
			}
		}
	}
}

// IO is what the Executor wires a line's first stdin and last stdout to
// when a stage does not have a pipe neighbour on that side — normally the
// session's own socket.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// Run executes every stage in order: external commands as real subprocesses,
// built-ins as goroutines, both reading/writing through the same pipe chain
// the Builder wired. Run does not return until every stage has finished,
// matching spec.md §4.E's "parent never returns control... until all
// children exit."
func Run(ctx context.Context, p *Pipeline, sessionIO IO, aux any) error {
	n := len(p.Stages)
	if n == 0 {
		return nil
	}

	runners := make([]stageRunner, n)
	for i := range p.Stages {
		runners[i] = newStageRunner(ctx, &p.Stages[i], stageEndpoints(p, i, sessionIO), aux)
	}

	var firstErr error
	for i, r := range runners {
		if err := r.wait(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stage %d (%s): %w", i, p.Stages[i].Command.Name, err)
		}
	}
	// Every stage has closed its own pipe ends by now; drop the line's
	// entries from the descriptor registry too, so none outlive the line.
	if p.descs != nil {
		closePipes(p.Stages, p.descs)
	}
	return firstErr
}

type endpoints struct {
	stdin  io.Reader
	stdout io.Writer
}

func stageEndpoints(p *Pipeline, i int, sio IO) endpoints {
	var e endpoints
	if p.Stages[i].StdinSrc != nil {
		e.stdin = p.Stages[i].StdinSrc
	} else {
		e.stdin = sio.Stdin
	}
	if p.Stages[i].StdoutDst != nil {
		e.stdout = p.Stages[i].StdoutDst
	} else {
		e.stdout = sio.Stdout
	}
	return e
}
