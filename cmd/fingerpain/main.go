// Package main provides the CLI entrypoint for fingerpain.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hhushhas/fingerpain/internal/config"
	"github.com/hhushhas/fingerpain/internal/session"
	"github.com/hhushhas/fingerpain/internal/store"
)

var (
	globalConfigPath string
	globalDBPath     string
	globalLogLevel   string
	globalLogFormat  string
)

// settings is the merged view of flags and the config file.
type settings struct {
	dbPath       string
	lockPath     string
	contextDir   string
	logLevel     string
	logFormat    string
	idleTimeout  time.Duration
	contextPoll  time.Duration
	pollInterval time.Duration
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fingerpain",
		Short:         "Typing analytics tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalConfigPath, "config", config.DefaultConfigPath(), "config file")
	flags.StringVar(&globalDBPath, "db", config.DefaultDBPath(), "database file")
	flags.StringVar(&globalLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&globalLogFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(newRunCmd())
	for _, cmd := range newPeriodCmds() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newRangeCmd())
	rootCmd.AddCommand(newAppsCmd())
	rootCmd.AddCommand(newPeakCmd())
	rootCmd.AddCommand(newHeatmapCmd())
	rootCmd.AddCommand(newTrendCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadSettings merges the config file under any flag the user did not set.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.ExpandHome(globalConfigPath))
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &globalDBPath, fileCfg.Daemon.DB)
	applyStringConfig(cmd, "log-level", &globalLogLevel, fileCfg.Logging.Level)
	applyStringConfig(cmd, "log-format", &globalLogFormat, fileCfg.Logging.Format)

	s := settings{
		dbPath:       config.ExpandHome(globalDBPath),
		contextDir:   config.DefaultContextDir(),
		logLevel:     globalLogLevel,
		logFormat:    globalLogFormat,
		idleTimeout:  session.DefaultIdleTimeout,
		contextPoll:  runContextPoll,
		pollInterval: runPollInterval,
	}
	s.lockPath = lockPathFor(s.dbPath)

	if cmd.Flags().Lookup("idle-timeout") != nil {
		s.idleTimeout = runIdleTimeout
		if err := applyDurationConfig(cmd, "idle-timeout", &s.idleTimeout, fileCfg.Daemon.IdleTimeout); err != nil {
			return settings{}, err
		}
		if err := applyDurationConfig(cmd, "context-poll", &s.contextPoll, fileCfg.Daemon.ContextPoll); err != nil {
			return settings{}, err
		}
		if err := applyDurationConfig(cmd, "poll-interval", &s.pollInterval, fileCfg.Daemon.PollInterval); err != nil {
			return settings{}, err
		}
		applyStringConfig(cmd, "context-dir", &runContextDir, fileCfg.Browser.ContextDir)
		if runContextDir != "" {
			s.contextDir = config.ExpandHome(runContextDir)
		}
	}
	if s.idleTimeout <= 0 || s.contextPoll <= 0 || s.pollInterval <= 0 {
		return settings{}, fmt.Errorf("durations must be positive")
	}
	return s, nil
}

// lockPathFor keeps one collector per database file.
func lockPathFor(dbPath string) string {
	if dbPath == config.DefaultDBPath() {
		return config.DefaultLockPath()
	}
	return filepath.Join(filepath.Dir(dbPath), filepath.Base(dbPath)+".lock")
}

func openStore(s settings) (*store.Store, error) {
	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := config.ParseDuration(name, *value)
	if err != nil {
		return err
	}
	*target = d
	return nil
}

func logErrf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
