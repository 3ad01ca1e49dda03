package fps

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/smnsjas/fps/internal/config"
)

// DefaultTimeout is the default per-command timeout.
const DefaultTimeout = 600 * time.Second

// Options configures a Shell. The zero value is not usable directly;
// NewShell starts from the documented defaults and applies the functional
// Option values it is given.
type Options struct {
	// TmpDir is the directory for the two scratch files. Defaults to the
	// current directory.
	TmpDir string

	// ExePath is the interpreter executable. Defaults to "pwsh" everywhere
	// except Windows, where it defaults to "powershell".
	ExePath string

	// Timeout bounds how long a single command may run before the shell
	// declares it dead and restarts the interpreter.
	Timeout time.Duration

	// CollectVerbose and CollectDebug enable capture of those two streams
	// via temp-file redirection. Both default to true.
	CollectVerbose bool
	CollectDebug   bool

	// Logger receives structured diagnostics for restarts, timeouts, and
	// decode failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option mutates an Options value being built by NewShell.
type Option func(*Options)

// WithTmpDir overrides the scratch-file directory.
func WithTmpDir(dir string) Option {
	return func(o *Options) { o.TmpDir = dir }
}

// WithExePath overrides the interpreter executable.
func WithExePath(path string) Option {
	return func(o *Options) { o.ExePath = path }
}

// WithTimeout overrides the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithVerbose toggles Verbose stream collection.
func WithVerbose(collect bool) Option {
	return func(o *Options) { o.CollectVerbose = collect }
}

// WithDebug toggles Debug stream collection.
func WithDebug(collect bool) Option {
	return func(o *Options) { o.CollectDebug = collect }
}

// WithLogger overrides the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithConfigFile loads an optional TOML overlay and applies any field it
// sets. A missing file is not an error. Apply this option before any
// functional option meant to take precedence over the file, since options
// apply in the order given to NewShell.
func WithConfigFile(path string) Option {
	return func(o *Options) {
		f, err := config.Load(path)
		if err != nil {
			if o.Logger != nil {
				o.Logger.Warn("fps: ignoring unreadable config file", "path", path, "error", err)
			}
			return
		}
		overlay := f.ToOverlay()
		if overlay.HasTmpDir {
			o.TmpDir = overlay.TmpDir
		}
		if overlay.HasExePath {
			o.ExePath = overlay.ExePath
		}
		if overlay.HasTimeout {
			o.Timeout = overlay.Timeout
		}
		if overlay.HasVerbose {
			o.CollectVerbose = overlay.CollectVerbose
		}
		if overlay.HasDebug {
			o.CollectDebug = overlay.CollectDebug
		}
	}
}

// defaultExePath returns the platform default for the interpreter
// executable.
func defaultExePath() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "pwsh"
}

// defaultOptions returns an Options populated with the documented defaults.
func defaultOptions() Options {
	return Options{
		TmpDir:         "",
		ExePath:        defaultExePath(),
		Timeout:        DefaultTimeout,
		CollectVerbose: true,
		CollectDebug:   true,
		Logger:         slog.Default(),
	}
}
