// Package engine shells out to a container engine (docker or podman) to
// build the grading image and run graded notebooks.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/autograde/internal/config"
	"github.com/okian/autograde/pkg/logger"
)

// Result is the structured outcome of one engine invocation. A non-zero
// exit code is not an error here; the external engine's verdict is data
// and the caller decides what to do with it.
type Result struct {
	RunID    string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// BuildSpec describes one image build.
type BuildSpec struct {
	ContextDir string
	Tag        string
	// Quiet captures engine output instead of streaming it through.
	Quiet bool
}

// RunSpec describes one grading container run. All host paths must be
// absolute; ContextDir is optional and mounted read-only when set.
type RunSpec struct {
	Image      string
	TestScript string
	Notebook   string
	TargetDir  string
	ContextDir string

	MountTest     string
	MountNotebook string
	MountTarget   string
	MountContext  string

	// UID is the host user's numeric identity passed into the container.
	UID int
}

// Engine abstracts the container engine for the application layer.
type Engine interface {
	Build(ctx context.Context, spec BuildSpec) (Result, error)
	Run(ctx context.Context, spec RunSpec) (Result, error)
}

// CLIEngine implements Engine by invoking the backend binary.
type CLIEngine struct {
	backend string
	invoker Invoker
	log     logger.Logger
}

// Option applies a configuration option to the CLIEngine.
type Option func(*CLIEngine)

// WithInvoker replaces the process invoker (used by tests).
func WithInvoker(inv Invoker) Option {
	return func(e *CLIEngine) {
		if inv != nil {
			e.invoker = inv
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(e *CLIEngine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates a CLIEngine for the given backend.
func New(backend string, opts ...Option) (*CLIEngine, error) {
	if backend != config.BackendDocker && backend != config.BackendPodman {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}
	e := &CLIEngine{
		backend: backend,
		invoker: &execInvoker{},
		log:     logger.Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Build runs `<backend> build -t <tag> <context>` and returns the
// engine's exit code unchanged. No retries; a build failure is
// surfaced as-is.
func (e *CLIEngine) Build(ctx context.Context, spec BuildSpec) (Result, error) {
	args := []string{"build", "-t", spec.Tag, spec.ContextDir}
	return e.invoke(ctx, args, !spec.Quiet)
}

// Run executes one grading container with the spec's bind mounts under
// the host user's identity.
func (e *CLIEngine) Run(ctx context.Context, spec RunSpec) (Result, error) {
	args := []string{
		"run",
		"-v", spec.TestScript + ":" + spec.MountTest,
		"-v", spec.Notebook + ":" + spec.MountNotebook,
		"-v", spec.TargetDir + ":" + spec.MountTarget,
	}
	if spec.ContextDir != "" {
		args = append(args, "-v", spec.ContextDir+":"+spec.MountContext+":ro")
	}
	args = append(args, "-u", strconv.Itoa(spec.UID), spec.Image)
	return e.invoke(ctx, args, true)
}

func (e *CLIEngine) invoke(ctx context.Context, args []string, stream bool) (Result, error) {
	runID := uuid.NewString()
	e.log.Debug(ctx, "invoking engine",
		logger.String("run_id", runID),
		logger.String("command", e.backend+" "+strings.Join(args, " ")))

	start := time.Now()
	res, err := e.invoker.Invoke(ctx, e.backend, args, stream)
	res.RunID = runID
	res.Duration = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvocationFailed, err)
	}

	e.log.Debug(ctx, "engine invocation finished",
		logger.String("run_id", runID),
		logger.Int("exit_code", res.ExitCode),
		logger.String("duration", res.Duration.String()))
	return res, nil
}
