package pipeline

import (
	"context"
	"os/exec"
	"strings"

	"github.com/infodancer/chatd/internal/registry"
)

// maxArgv bounds the total argv slots (command name included) built from a
// stage's whitespace-split argument tail, matching spec.md §4.E.
const maxArgv = 20

// stageRunner is either a goroutine running a built-in or a real subprocess
// running an external binary. Both expose the same wait contract so the
// Executor's reap loop does not need to know which kind it is waiting on.
type stageRunner interface {
	wait() error
}

func newStageRunner(ctx context.Context, stage *Stage, ep endpoints, aux any) stageRunner {
	if stage.Command.Kind == registry.External {
		return startExternal(ctx, stage, ep)
	}
	return startBuiltin(ctx, stage, ep, aux)
}

type externalRunner struct {
	cmd      *exec.Cmd
	startErr error
}

func startExternal(ctx context.Context, stage *Stage, ep endpoints) *externalRunner {
	argv := buildArgv(stage.Command.Name, stage.ArgTail)
	cmd := exec.CommandContext(ctx, stage.Command.FullName, argv[1:]...)
	cmd.Args = argv
	cmd.Stdin = ep.stdin
	cmd.Stdout = ep.stdout

	if err := cmd.Start(); err != nil {
		closeStageFiles(stage)
		return &externalRunner{startErr: err}
	}
	// The child now owns its own duplicated copies of any pipe fds; release
	// ours immediately so EOF reaches the next stage promptly, matching
	// subprocess.go's "close the parent's copies of fds now owned by the
	// child" discipline.
	closeStageFiles(stage)
	return &externalRunner{cmd: cmd}
}

func (r *externalRunner) wait() error {
	if r.startErr != nil {
		return r.startErr
	}
	return r.cmd.Wait()
}

type builtinRunner struct {
	done chan error
}

func startBuiltin(ctx context.Context, stage *Stage, ep endpoints, aux any) *builtinRunner {
	done := make(chan error, 1)
	go func() {
		err := stage.Command.Handler(ctx, ep.stdin, ep.stdout, stage.ArgTail, aux)
		closeStageFiles(stage)
		done <- err
	}()
	return &builtinRunner{done: done}
}

func (r *builtinRunner) wait() error {
	return <-r.done
}

func closeStageFiles(stage *Stage) {
	if stage.StdinSrc != nil {
		_ = stage.StdinSrc.Close()
	}
	if stage.StdoutDst != nil {
		_ = stage.StdoutDst.Close()
	}
}

func buildArgv(name, argTail string) []string {
	argv := []string{name}
	if argTail == "" {
		return argv
	}
	for _, f := range strings.Fields(argTail) {
		if len(argv) >= maxArgv {
			break
		}
		argv = append(argv, f)
	}
	return argv
}
