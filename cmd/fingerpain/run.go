package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hhushhas/fingerpain/internal/activeapp"
	"github.com/hhushhas/fingerpain/internal/browser"
	"github.com/hhushhas/fingerpain/internal/capture"
	"github.com/hhushhas/fingerpain/internal/daemon"
	"github.com/hhushhas/fingerpain/internal/live"
	"github.com/hhushhas/fingerpain/internal/logging"
	"github.com/hhushhas/fingerpain/internal/session"
	"github.com/hhushhas/fingerpain/internal/store"
)

var (
	runLive         bool
	runIdleTimeout  time.Duration
	runContextPoll  = activeapp.DefaultPollInterval
	runPollInterval = daemon.DefaultPollInterval
	runContextDir   string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the keystroke collector in the foreground",
		Args:  cobra.NoArgs,
		RunE:  runDaemonCmd,
	}
	cmd.Flags().BoolVar(&runLive, "live", false, "show the live WPM monitor")
	cmd.Flags().DurationVar(&runIdleTimeout, "idle-timeout", session.DefaultIdleTimeout, "gap that ends a typing session")
	cmd.Flags().DurationVar(&runContextPoll, "context-poll", activeapp.DefaultPollInterval, "how often the focused app is queried")
	cmd.Flags().DurationVar(&runPollInterval, "poll-interval", daemon.DefaultPollInterval, "how often buffered keystrokes are processed")
	cmd.Flags().StringVar(&runContextDir, "context-dir", "", "directory watched for browser page context")
	return cmd
}

func runDaemonCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logOut, closeLog, err := daemonLogOutput(s)
	if err != nil {
		return err
	}
	defer closeLog()
	logger, err := logging.New(logging.Options{Level: s.logLevel, Format: s.logFormat, Output: logOut})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	lock, err := daemon.AcquireLock(s.lockPath)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			logger.Warn("release lock", "err", rerr)
		}
	}()

	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := st.CloseDanglingSessions(ctx); err != nil {
		logger.Warn("close dangling sessions", "err", err)
	} else if n > 0 {
		logger.Info("closed sessions left open by a previous run", "count", n)
	}

	registry := startBrowserContext(ctx, st, s, logger)

	resolver := activeapp.NewCached(activeapp.NewPlatformResolver(), activeapp.Options{
		Interval: s.contextPoll,
		Browsers: registry,
		Logger:   logger,
	})
	resolver.Refresh(ctx)
	go resolver.Run(ctx)

	listener := capture.NewListener(capture.Options{Context: resolver, Logger: logger})
	tracker := session.NewTracker(st, session.Config{IdleTimeout: s.idleTimeout})
	d := daemon.New(listener, st, tracker, daemon.Config{
		PollInterval: s.pollInterval,
		Runs:         st,
		Logger:       logger,
	})
	logger.Debug("opened database", "path", s.dbPath, "context_dir", s.contextDir)

	if !runLive {
		return collectorError(d.Run(ctx))
	}
	return runWithMonitor(ctx, stop, d, tracker, resolver)
}

func runWithMonitor(ctx context.Context, stop context.CancelFunc, d *daemon.Daemon, tracker *session.Tracker, resolver *activeapp.Cached) error {
	done := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		defer close(done)
		errCh <- d.Run(ctx)
	}()

	monitor := live.NewModel(live.Options{
		Session:  tracker,
		Counters: d,
		Context:  resolver,
		Done:     done,
	})
	program := tea.NewProgram(monitor, tea.WithAltScreen())
	_, uiErr := program.Run()
	stop()
	runErr := collectorError(<-errCh)
	if uiErr != nil {
		return errors.Join(fmt.Errorf("failed to run live monitor: %w", uiErr), runErr)
	}
	return runErr
}

// startBrowserContext seeds the page registry and watches for updates. A
// watcher failure only disables domain attribution.
func startBrowserContext(ctx context.Context, st *store.Store, s settings, logger *slog.Logger) *browser.Registry {
	registry := browser.NewRegistry()
	if err := registry.Seed(ctx, st); err != nil {
		logger.Warn("load browser context", "err", err)
	}
	watcher, err := browser.NewWatcher(s.contextDir, registry, st, logger)
	if err != nil {
		logger.Warn("browser context disabled", "dir", s.contextDir, "err", err)
		return registry
	}
	if err := watcher.Scan(ctx); err != nil {
		logger.Warn("scan browser context", "err", err)
	}
	logger.Debug("browser context ready", "dir", s.contextDir, "browsers", registry.Len())
	go func() {
		watcher.Run(ctx)
		if cerr := watcher.Close(); cerr != nil {
			logger.Warn("close browser watcher", "err", cerr)
		}
	}()
	return registry
}

// daemonLogOutput sends logs to a file while the live monitor owns the terminal.
func daemonLogOutput(s settings) (*os.File, func(), error) {
	if !runLive {
		return os.Stderr, func() {}, nil
	}
	f, err := openDaemonLog(s)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func collectorError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, capture.ErrHookInstall) {
		return fmt.Errorf("%w\nOn macOS grant Accessibility (or Input Monitoring) access to your terminal; on Linux add your user to the input group", err)
	}
	return err
}
