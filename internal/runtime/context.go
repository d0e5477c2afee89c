// Package runtime provides application runtime context for dailyclocks.
package runtime

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/manav03panchal/dailyclocks/internal/config"
	apperrors "github.com/manav03panchal/dailyclocks/internal/errors"
	"github.com/manav03panchal/dailyclocks/internal/logging"
	"github.com/manav03panchal/dailyclocks/internal/notify"
	"github.com/manav03panchal/dailyclocks/internal/output"
	"github.com/manav03panchal/dailyclocks/internal/registry"
	"github.com/manav03panchal/dailyclocks/internal/scheduler"
	"github.com/manav03panchal/dailyclocks/internal/storage"
)

// MemoryPath selects a throwaway in-memory store.
const MemoryPath = ":memory:"

// Context holds the application runtime context.
type Context struct {
	Config    *config.RuntimeConfig
	DB        *storage.DB
	Store     *storage.Store
	Registry  *registry.Registry
	Clock     clockwork.Clock
	Fs        afero.Fs
	Formatter *output.Formatter

	// Ctx carries the request id of this invocation.
	Ctx context.Context

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	ConfigPath string
	Fs         afero.Fs
	DBPath     string
	InMemory   bool
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool

	// Clock, Sink, NewID and Writer replace the real ones in tests.
	Clock  clockwork.Clock
	Sink   notify.Sink
	NewID  registry.IDGenerator
	Writer io.Writer

	// WrapSink decorates the completion sink, e.g. to count completions.
	WrapSink func(notify.Sink) notify.Sink
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		ConfigPath: config.DefaultFilePath(),
		Fs:         afero.NewOsFs(),
		Format:     output.FormatCLI,
		ColorMode:  output.ColorAuto,
	}
}

// New loads the configuration, opens the store, and restores the registry,
// catching up on time that passed since the last invocation.
func New(opts Options) (*Context, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	cfg, err := config.Load(opts.Fs, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	dbPath, inMemory := resolveDBPath(opts, cfg)
	db, err := storage.Open(storage.Options{Path: dbPath, InMemory: inMemory})
	if err != nil {
		return nil, apperrors.WrapDiskFull(err, "open", dbPath)
	}

	ctx := logging.NewRequestContext()
	log := logging.FromContext(ctx)

	sink := opts.Sink
	if sink == nil {
		sink = notify.FromConfig(cfg, os.Stderr, opts.Clock)
	}
	if opts.WrapSink != nil {
		sink = opts.WrapSink(sink)
	}

	store := storage.NewStore(db)
	reg := registry.New(store, registry.Options{
		Clock:        opts.Clock,
		TickInterval: cfg.Timer.TickInterval,
		GraceDelay:   cfg.Timer.GraceDelay,
		Sink:         sink,
		NewID:        opts.NewID,
	})
	if err := reg.Load(ctx); err != nil {
		reg.Close()
		db.Close()
		return nil, err
	}
	if n, err := reg.Pass(ctx); err == nil && n > 0 {
		log.Info("completed timers that ran out while away", logging.KeyCount, n)
	}

	formatter := output.NewFormatter()
	formatter.Writer = opts.Writer
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	log.Debug("runtime ready", "db", db.Path(), "config", opts.ConfigPath)

	return &Context{
		Config:    cfg,
		DB:        db,
		Store:     store,
		Registry:  reg,
		Clock:     opts.Clock,
		Fs:        opts.Fs,
		Formatter: formatter,
		Ctx:       ctx,
		Debug:     opts.Debug,
	}, nil
}

// resolveDBPath picks the database location: explicit options, then the
// configuration (which carries DAILYCLOCKS_DATABASE), then the XDG default.
func resolveDBPath(opts Options, cfg *config.RuntimeConfig) (string, bool) {
	if opts.InMemory {
		return "", true
	}
	path := opts.DBPath
	if path == "" {
		path = cfg.Storage.Path
	}
	if path == MemoryPath {
		return "", true
	}
	if path == "" {
		path = storage.DefaultPath()
	}
	return path, false
}

// StartBackground starts the tick tasks and the rollover scheduler for a
// command that keeps the store open, such as the dashboard. The caller
// stops the returned scheduler.
func (c *Context) StartBackground() (*scheduler.Scheduler, error) {
	if err := c.Registry.StartTicking(c.Ctx); err != nil {
		return nil, err
	}
	sched := scheduler.NewScheduler(c.Registry, c.Clock,
		c.Config.Scheduler.PollSpec, c.Config.Scheduler.RolloverWindow)
	if err := sched.Start(c.Ctx); err != nil {
		return nil, err
	}
	return sched, nil
}

// Close stops the registry, flushing pending work, and closes the database.
func (c *Context) Close() error {
	var errs []error
	if c.Registry != nil {
		errs = append(errs, c.Registry.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}
