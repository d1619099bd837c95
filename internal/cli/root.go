package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tasklist/internal/app"
	"tasklist/internal/config"
	"tasklist/internal/storage"
	"tasklist/internal/tasks"
	"tasklist/internal/ui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Verbose    bool

	// overridable in tests
	in  io.Reader
	now func() time.Time
}

// session is everything a command needs once config and storage are open.
type session struct {
	cfg      config.Config
	created  bool
	db       *storage.Store
	dispatch *app.Dispatcher
	logger   *slog.Logger
	closeLog func() error
}

func (s *session) Close() error {
	err := s.db.Close()
	if s.closeLog != nil {
		if cerr := s.closeLog(); err == nil {
			err = cerr
		}
	}
	return err
}

// NewRootCommand creates the todo command. Without a subcommand it starts
// the interactive list.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{in: os.Stdin, now: time.Now})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "todo",
		Short:        "A local task list",
		Long:         "Create, edit, complete and filter tasks stored in a local SQLite file.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer s.Close()
			return ui.Run(s.dispatch, s.cfg, s.created)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $TODO_CONFIG or user config dir)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file, overrides db_path from config")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newToggleCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newClearCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}

// openSession loads config, opens storage and builds the dispatcher.
// interactive sessions log to the configured file so the terminal stays
// with the renderer.
func openSession(opts *RootOptions, stderr io.Writer, interactive bool) (*session, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	_, statErr := os.Stat(path)
	created := errors.Is(statErr, os.ErrNotExist)
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	logger, closeLog, err := newLogger(cfg, opts.Verbose, stderr, interactive)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		if closeLog != nil {
			closeLog()
		}
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database ready", "path", cfg.DBPath)

	now := opts.now
	if now == nil {
		now = time.Now
	}
	store := tasks.Open(db, cfg.StorageKey, tasks.WithLogger(logger), tasks.WithClock(now))
	if cfg.SeedDemo {
		if _, err := store.SeedIfEmpty(); err != nil {
			logger.Warn("seeding demo tasks failed", "error", err)
		}
	}

	filter, err := tasks.ParseFilter(cfg.DefaultFilter)
	if err != nil {
		logger.Warn("ignoring default_filter", "value", cfg.DefaultFilter, "error", err)
	}

	return &session{
		cfg:      cfg,
		created:  created,
		db:       db,
		dispatch: app.New(store, filter, app.WithLogger(logger), app.WithClock(now)),
		logger:   logger,
		closeLog: closeLog,
	}, nil
}

func newLogger(cfg config.Config, verbose bool, stderr io.Writer, interactive bool) (*slog.Logger, func() error, error) {
	level := parseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	var closeFn func() error
	switch {
	case cfg.LogPath != "":
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	case !interactive && verbose:
		w = stderr
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeFn, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
