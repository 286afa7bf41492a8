// Package config defines tool configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer optional file and environment on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Supported container backends.
const (
	BackendDocker = "docker"
	BackendPodman = "podman"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error. The -v flag
	// count on the command line takes precedence when given.
	LogLevel string `koanf:"log_level"`

	// Backend selects the container engine: docker or podman.
	Backend string `koanf:"backend"`

	// ImageTag is the tag used for building and running the grading image.
	ImageTag string `koanf:"image_tag"`

	// BuildContext is the directory passed to the engine's build command.
	BuildContext string `koanf:"build_context"`

	// NotebookExt is the file extension used when discovering notebooks.
	NotebookExt string `koanf:"notebook_ext"`

	// CheckpointDir names the editor backup directory excluded from discovery.
	CheckpointDir string `koanf:"checkpoint_dir"`

	// ArchivePattern is the glob result archives must match by base name.
	ArchivePattern string `koanf:"archive_pattern"`

	// ResultsFile is the archive member holding the result record.
	ResultsFile string `koanf:"results_file"`

	// SummaryFile and HistogramFile name the summary artifacts written
	// into the scanned directory.
	SummaryFile   string `koanf:"summary_file"`
	HistogramFile string `koanf:"histogram_file"`

	// MetricsFile, when non-empty, is where run metrics are dumped in the
	// Prometheus text exposition format.
	MetricsFile string `koanf:"metrics_file"`

	// In-container mount points for the grading run.
	MountTest     string `koanf:"mount_test"`
	MountNotebook string `koanf:"mount_notebook"`
	MountTarget   string `koanf:"mount_target"`
	MountContext  string `koanf:"mount_context"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "warn",
		Backend:        BackendDocker,
		ImageTag:       "autograde",
		BuildContext:   ".",
		NotebookExt:    ".ipynb",
		CheckpointDir:  ".ipynb_checkpoints",
		ArchivePattern: "results_*.zip",
		ResultsFile:    "results.json",
		SummaryFile:    "summary.csv",
		HistogramFile:  "score_distribution.png",
		MetricsFile:    "",
		MountTest:      "/autograde/test.py",
		MountNotebook:  "/autograde/notebook.ipynb",
		MountTarget:    "/autograde/target",
		MountContext:   "/autograde/context",
	}
}
