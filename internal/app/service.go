// Package service provides the core application service behind the CLI
// subcommands: building the grading image, running notebooks, and
// summarizing result archives.
package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/autograde/internal/adapters/archive"
	"github.com/okian/autograde/internal/adapters/engine"
	"github.com/okian/autograde/internal/adapters/export"
	"github.com/okian/autograde/internal/config"
	"github.com/okian/autograde/internal/discovery"
	"github.com/okian/autograde/internal/domain/dedupe"
	"github.com/okian/autograde/internal/domain/model"
	"github.com/okian/autograde/internal/domain/report"
	"github.com/okian/autograde/pkg/logger"
	"github.com/okian/autograde/pkg/metrics"
)

// Service wires the adapters together. All operations are sequential; a
// Service carries no mutable state between calls.
type Service struct {
	cfg     *config.Config
	engine  engine.Engine
	metrics *metrics.Manager
	log     logger.Logger
	uid     int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the tool configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithEngine sets the container engine.
func WithEngine(e engine.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithMetrics sets a custom metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithUserID overrides the numeric user identity passed into containers.
func WithUserID(uid int) Option {
	return func(s *Service) {
		s.uid = uid
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:     config.New(),
		metrics: metrics.NewManager(),
		uid:     os.Geteuid(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("autograde")
	}
	return s
}

// BuildImage builds the grading image from the configured build context
// and returns the engine's exit code unchanged.
func (s *Service) BuildImage(ctx context.Context, quiet bool) (int, error) {
	if s.engine == nil {
		return 1, ErrNoEngine
	}

	buildContext, err := expandPath(s.cfg.BuildContext)
	if err != nil {
		return 1, err
	}

	s.metrics.RecordBuild()
	res, err := s.engine.Build(ctx, engine.BuildSpec{
		ContextDir: buildContext,
		Tag:        s.cfg.ImageTag,
		Quiet:      quiet,
	})
	if err != nil {
		return 1, err
	}
	return res.ExitCode, nil
}

// GradeRequest describes one test command invocation.
type GradeRequest struct {
	// TestScript is the grading script mounted into each container.
	TestScript string
	// NotebookPath is a single notebook or a directory to search.
	NotebookPath string
	// TargetDir receives result archives; empty means current directory.
	TargetDir string
	// ContextDir is optional shared reference data, mounted read-only.
	ContextDir string
}

// Grade runs one container per notebook, sequentially, and returns the
// maximum exit code across all runs. Validation failures surface before
// any container is started.
func (s *Service) Grade(ctx context.Context, req GradeRequest) (int, error) {
	if s.engine == nil {
		return 1, ErrNoEngine
	}

	paths, err := s.validateGradePaths(req)
	if err != nil {
		return 1, err
	}

	notebooks := []string{paths.notebook}
	if paths.notebookIsDir {
		notebooks, err = discovery.Notebooks(paths.notebook, s.cfg.NotebookExt, s.cfg.CheckpointDir)
		if err != nil {
			return 1, err
		}
	}
	if len(notebooks) == 0 {
		s.log.Warn(ctx, "no notebooks found", logger.String("path", paths.notebook))
		return 0, nil
	}

	maxExit := 0
	for _, nb := range notebooks {
		s.log.Info(ctx, "grading notebook", logger.String("notebook", nb))

		res, err := s.engine.Run(ctx, engine.RunSpec{
			Image:         s.cfg.ImageTag,
			TestScript:    paths.testScript,
			Notebook:      nb,
			TargetDir:     paths.target,
			ContextDir:    paths.context,
			MountTest:     s.cfg.MountTest,
			MountNotebook: s.cfg.MountNotebook,
			MountTarget:   s.cfg.MountTarget,
			MountContext:  s.cfg.MountContext,
			UID:           s.uid,
		})
		if err != nil {
			return 1, err
		}

		s.metrics.RecordRun(res.ExitCode, res.Duration)
		if res.ExitCode != 0 {
			s.log.Warn(ctx, "grading run exited non-zero",
				logger.String("notebook", nb),
				logger.Int("exit_code", res.ExitCode))
		}
		if res.ExitCode > maxExit {
			maxExit = res.ExitCode
		}
	}
	return maxExit, nil
}

// Summarize scans location for result archives and writes the summary CSV
// and the score distribution plot into it. Archives without a readable
// result record are skipped with a warning; inconsistent max scores abort
// before any output is written.
func (s *Service) Summarize(ctx context.Context, location string) error {
	location, err := expandPath(location)
	if err != nil {
		return err
	}
	if err := mustBeDir(location); err != nil {
		return err
	}

	paths, err := archive.Scan(location, s.cfg.ArchivePattern)
	if err != nil {
		return err
	}

	scored := make([]model.ScoredArchive, 0, len(paths))
	for _, path := range paths {
		s.metrics.RecordArchiveScanned()

		record, err := archive.ReadRecord(path, s.cfg.ResultsFile)
		if err != nil {
			s.metrics.RecordArchiveSkipped()
			s.log.Warn(ctx, "skipping result archive", logger.String("archive", path), logger.Error(err))
			continue
		}

		name := path
		if rel, err := filepath.Rel(location, path); err == nil {
			name = rel
		}
		scored = append(scored, model.ScoredArchive{Record: record, ArchivePath: name})
	}

	batch, err := report.Build(ctx, scored, dedupe.NewInMemoryTracker())
	if err != nil {
		return err
	}
	for _, path := range batch.MemberlessArchives() {
		s.log.Warn(ctx, "result record has no team members", logger.String("archive", path))
	}

	rows := batch.Rows()
	if err := export.WriteCSV(filepath.Join(location, s.cfg.SummaryFile), rows); err != nil {
		return err
	}
	s.metrics.AddRowsWritten(len(rows))
	s.log.Info(ctx, "summary written",
		logger.String("file", s.cfg.SummaryFile),
		logger.Int("rows", len(rows)))

	scores := batch.FirstOccurrenceScores()
	histPath := filepath.Join(location, s.cfg.HistogramFile)
	if err := export.WriteHistogram(histPath, scores, batch.MaxScore()); err != nil {
		if errors.Is(err, export.ErrNoScores) {
			s.log.Warn(ctx, "no scores to plot, skipping histogram")
			return nil
		}
		return err
	}
	s.log.Info(ctx, "histogram written", logger.String("file", s.cfg.HistogramFile))
	return nil
}

// DumpMetrics writes run metrics to the configured textfile, if any.
func (s *Service) DumpMetrics(ctx context.Context) error {
	if s.cfg.MetricsFile == "" {
		return nil
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
		return err
	}
	s.log.Debug(ctx, "metrics written", logger.String("file", s.cfg.MetricsFile))
	return nil
}

// gradePaths holds the validated, absolute paths of one grade request.
type gradePaths struct {
	testScript    string
	notebook      string
	notebookIsDir bool
	target        string
	context       string
}

func (s *Service) validateGradePaths(req GradeRequest) (gradePaths, error) {
	var p gradePaths
	var err error

	if p.testScript, err = expandPath(req.TestScript); err != nil {
		return p, err
	}
	if err = mustBeFile(p.testScript); err != nil {
		return p, err
	}

	if p.notebook, err = expandPath(req.NotebookPath); err != nil {
		return p, err
	}
	info, err := os.Stat(p.notebook)
	if err != nil || (!info.Mode().IsRegular() && !info.IsDir()) {
		return p, pathError(ErrNotFileOrDirectory, p.notebook)
	}
	p.notebookIsDir = info.IsDir()

	target := req.TargetDir
	if target == "" {
		target = "."
	}
	if p.target, err = expandPath(target); err != nil {
		return p, err
	}
	if err = mustBeDir(p.target); err != nil {
		return p, err
	}

	if req.ContextDir != "" {
		if p.context, err = expandPath(req.ContextDir); err != nil {
			return p, err
		}
		if err = mustBeDir(p.context); err != nil {
			return p, err
		}
	}
	return p, nil
}

// expandPath resolves ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

func mustBeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return pathError(ErrNotFile, path)
	}
	return nil
}

func mustBeDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return pathError(ErrNotDirectory, path)
	}
	return nil
}
