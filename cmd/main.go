// Command autograde builds the grading image, runs notebooks inside it,
// and summarizes the resulting archives.
//
// Usage:
//
//	autograde [-v ...] [-e docker|podman] build [-q]
//	autograde [-v ...] [-e docker|podman] test <test-script> <notebook-or-dir> [-t target] [-c context]
//	autograde [-v ...] [-e docker|podman] summary <location>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/okian/autograde/internal/adapters/engine"
	service "github.com/okian/autograde/internal/app"
	"github.com/okian/autograde/internal/config"
	"github.com/okian/autograde/pkg/logger"
)

const usageExitCode = 2

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "autograde:", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	global := flag.NewFlagSet("autograde", flag.ContinueOnError)
	var verbosity countFlag
	global.Var(&verbosity, "v", "verbosity level (repeatable)")
	backend := global.String("e", "", "container backend: docker or podman")
	global.Usage = func() {
		fmt.Fprintln(global.Output(), "usage: autograde [-v ...] [-e docker|podman] <build|test|summary> ...")
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		return usageExitCode, nil
	}
	if global.NArg() == 0 {
		global.Usage()
		return usageExitCode, errors.New("missing sub command")
	}

	if err := logger.Init(); err != nil {
		return 1, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return 1, err
	}

	// -v overrides the configured log level when given.
	if verbosity > 0 {
		logger.SetLevelCount(int(verbosity))
	} else if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to warn",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}

	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			return usageExitCode, err
		}
	}

	eng, err := engine.New(cfg.Backend)
	if err != nil {
		return usageExitCode, err
	}
	svc := service.New(
		service.WithConfig(cfg),
		service.WithEngine(eng),
	)

	logger.Get().Debug(ctx, "arguments parsed",
		logger.String("backend", cfg.Backend),
		logger.Int("verbosity", int(verbosity)),
		logger.String("sub_command", global.Arg(0)))

	code, err := dispatch(ctx, svc, global.Arg(0), global.Args()[1:])

	if dumpErr := svc.DumpMetrics(ctx); dumpErr != nil {
		logger.Get().Warn(ctx, "failed to write metrics", logger.Error(dumpErr))
	}
	return code, err
}

func dispatch(ctx context.Context, svc *service.Service, sub string, rest []string) (int, error) {
	switch sub {
	case "build":
		fs := flag.NewFlagSet("build", flag.ContinueOnError)
		quiet := fs.Bool("q", false, "mute engine output")
		positional, err := parseInterleaved(fs, rest)
		if err != nil {
			return usageExitCode, nil
		}
		if len(positional) != 0 {
			return usageExitCode, fmt.Errorf("build takes no arguments, got %v", positional)
		}
		return svc.BuildImage(ctx, *quiet)

	case "test":
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		target := fs.String("t", "", "where to store results")
		contextDir := fs.String("c", "", "context directory")
		positional, err := parseInterleaved(fs, rest)
		if err != nil {
			return usageExitCode, nil
		}
		if len(positional) != 2 {
			return usageExitCode, errors.New("usage: test <test-script> <notebook-or-dir> [-t target] [-c context]")
		}
		return svc.Grade(ctx, service.GradeRequest{
			TestScript:   positional[0],
			NotebookPath: positional[1],
			TargetDir:    *target,
			ContextDir:   *contextDir,
		})

	case "summary":
		fs := flag.NewFlagSet("summary", flag.ContinueOnError)
		positional, err := parseInterleaved(fs, rest)
		if err != nil {
			return usageExitCode, nil
		}
		if len(positional) != 1 {
			return usageExitCode, errors.New("usage: summary <location>")
		}
		if err := svc.Summarize(ctx, positional[0]); err != nil {
			return 1, err
		}
		return 0, nil

	default:
		return usageExitCode, fmt.Errorf("unknown sub command %q", sub)
	}
}

// parseInterleaved parses fs while collecting positional arguments, so
// flags may appear before or after positionals (test <script> <nb> -t out).
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// countFlag is a repeatable boolean flag; each occurrence increments it.
type countFlag int

func (c *countFlag) String() string { return strconv.Itoa(int(*c)) }

func (c *countFlag) IsBoolFlag() bool { return true }

func (c *countFlag) Set(value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if b {
		*c++
	}
	return nil
}
