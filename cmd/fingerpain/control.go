package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hhushhas/fingerpain/internal/config"
	"github.com/hhushhas/fingerpain/internal/daemon"
	"github.com/hhushhas/fingerpain/internal/stats"
	"github.com/hhushhas/fingerpain/internal/store"
)

const stopWait = 5 * time.Second

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collector status",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running collector",
		Args:  cobra.NoArgs,
		RunE:  runStopCmd,
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

// collectorRunning tries the lock and releases it at once.
func collectorRunning(lockPath string) (bool, error) {
	lock, err := daemon.AcquireLock(lockPath)
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, lock.Release()
}

func statusColors(cmd *cobra.Command) (ok, bad, muted *color.Color) {
	enabled := stats.ShouldUseColor(cmd.OutOrStdout())
	ok, bad, muted = color.New(color.FgGreen), color.New(color.FgRed), color.New(color.Faint)
	for _, c := range []*color.Color{ok, bad, muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return ok, bad, muted
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	running, err := collectorRunning(s.lockPath)
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ok, bad, muted := statusColors(cmd)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	run, runErr := st.LatestRun(ctx)
	if runErr != nil && !errors.Is(runErr, store.ErrNotFound) {
		return fmt.Errorf("failed to load runs: %w", runErr)
	}
	if !running {
		fmt.Fprintln(out, bad.Sprint("✗ Collector is not running"))
		if runErr == nil && !run.EndedAt.IsZero() {
			fmt.Fprintln(out, muted.Sprintf("  last run ended %s", run.EndedAt.Local().Format("2006-01-02 15:04:05")))
		}
		return nil
	}

	if runErr == nil {
		fmt.Fprintln(out, ok.Sprintf("✓ Collector is running (PID: %d)", run.PID))
		fmt.Fprintln(out, muted.Sprintf("  started %s, run %s", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.ID))
	} else {
		fmt.Fprintln(out, ok.Sprint("✓ Collector is running"))
	}

	sess, err := st.ActiveSession(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(out, muted.Sprint("  no open typing session"))
	case err != nil:
		return fmt.Errorf("failed to load session: %w", err)
	default:
		fmt.Fprintf(out, "  typing since %s: %s chars, %s words\n",
			sess.StartTime.Local().Format("15:04:05"),
			stats.FormatCount(sess.CharCount),
			stats.FormatCount(sess.WordCount),
		)
	}
	return nil
}

func runStopCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	running, err := collectorRunning(s.lockPath)
	if err != nil {
		return err
	}
	ok, _, muted := statusColors(cmd)
	out := cmd.OutOrStdout()
	if !running {
		fmt.Fprintln(out, muted.Sprint("Collector was not running"))
		return nil
	}

	st, err := openStore(s)
	if err != nil {
		return err
	}
	run, err := st.LatestRun(cmd.Context())
	closeStore(st)
	if err != nil {
		return fmt.Errorf("failed to find running collector: %w", err)
	}
	if run.PID <= 0 {
		return fmt.Errorf("running collector has no recorded pid")
	}
	proc, err := os.FindProcess(run.PID)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", run.PID, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", run.PID, err)
	}

	deadline := time.Now().Add(stopWait)
	for time.Now().Before(deadline) {
		running, err := collectorRunning(s.lockPath)
		if err != nil {
			return err
		}
		if !running {
			fmt.Fprintln(out, ok.Sprint("✓ Collector stopped"))
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("collector (PID %d) did not stop within %s", run.PID, stopWait)
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.ExpandHome(globalConfigPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}
