package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// Invoker runs the engine binary and reports its exit code. Separated
// from CLIEngine so tests can observe command lines without a container
// engine installed.
type Invoker interface {
	// Invoke blocks until the process exits. When stream is true the
	// child inherits stdout/stderr; otherwise both are captured in the
	// Result. A non-zero exit is reported in the Result, not as an error.
	Invoke(ctx context.Context, name string, args []string, stream bool) (Result, error)
}

// execInvoker is the real os/exec-backed Invoker.
type execInvoker struct{}

func (execInvoker) Invoke(ctx context.Context, name string, args []string, stream bool) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	if stream {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		// The engine ran and failed; its exit code is the verdict.
		res.ExitCode = exitErr.ExitCode()
	default:
		// The engine never ran (binary missing, context canceled, ...).
		return res, err
	}
	return res, nil
}
