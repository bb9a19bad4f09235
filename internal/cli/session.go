package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/taskdeck/internal/auth"
	"github.com/randalmurphal/taskdeck/internal/config"
	"github.com/randalmurphal/taskdeck/internal/events"
	"github.com/randalmurphal/taskdeck/internal/metrics"
	"github.com/randalmurphal/taskdeck/internal/storage"
	"github.com/randalmurphal/taskdeck/internal/store"
)

// session is everything one command invocation works with. It owns the
// storage backend and must be closed.
type session struct {
	ctx     context.Context
	cfg     *config.TrackedConfig
	logger  *slog.Logger
	blob    storage.Blob
	store   *store.Store
	auth    *auth.Service
	journal *events.JournalPublisher
	metrics *metrics.Collector
	// echoWait drains the --events echo; nil when the flag is off.
	echoWait func()

	out    io.Writer
	errOut io.Writer
	json   bool
	emit   bool
	styles styles
}

// run wraps a command body with session setup and teardown.
func (o *globalOptions) run(fn func(s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := o.openSession(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(s, args)
	}
}

func (o *globalOptions) openSession(cmd *cobra.Command) (*session, error) {
	tc, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg := tc.Config

	errOut := cmd.ErrOrStderr()
	logger := newLogger(errOut, cfg.Log, o.verbose)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	blob, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	logger.Debug("storage opened", "driver", cfg.Storage.Driver)

	s := &session{
		ctx:     ctx,
		cfg:     tc,
		logger:  logger,
		blob:    blob,
		metrics: metrics.New(),
		out:     cmd.OutOrStdout(),
		errOut:  errOut,
		json:    o.jsonOut,
		emit:    o.metrics,
		styles:  newStyles(cmd.OutOrStdout()),
	}

	s.journal = events.NewJournalPublisher(blob, logger, events.WithJournalKey(cfg.Storage.JournalKey))
	if o.events {
		s.echoWait = events.Follow(errOut, s.journal.Subscribe(events.GlobalTopic))
	}

	adapter := storage.NewAdapter(blob, cfg.Storage.Key, storage.WithAdapterLogger(logger))
	s.store, err = store.New(ctx, adapter,
		store.WithLogger(logger),
		store.WithPublisher(s.journal),
		store.WithMetrics(s.metrics),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	creds := auth.Credentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password}
	s.auth, err = auth.New(ctx, blob, creds, auth.WithKey(cfg.Storage.AuthKey), auth.WithLogger(logger))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close flushes the journal, prints metrics when asked, and releases storage.
func (s *session) Close() error {
	if s.journal != nil {
		s.journal.Close()
	}
	if s.echoWait != nil {
		s.echoWait()
	}
	var errs []error
	if s.emit {
		if err := s.metrics.WriteText(s.errOut); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.blob.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

// requireAuth gates mutating commands.
func (s *session) requireAuth() error {
	return s.auth.Require()
}

// newLogger builds the slog handler from config. verbose forces debug.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
