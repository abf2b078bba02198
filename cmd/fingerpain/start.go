package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hhushhas/fingerpain/internal/store"
)

const startWait = 3 * time.Second

// spawnCollector launches a detached collector and reports its pid. The
// exited channel yields the process result if it ends early.
var spawnCollector = startDetached

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the collector in the background",
		Args:  cobra.NoArgs,
		RunE:  runStartCmd,
	}
}

func runStartCmd(cmd *cobra.Command, _ []string) error {
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
	if running {
		fmt.Fprintln(out, muted.Sprint("Collector is already running"))
		return nil
	}

	logFile, err := openDaemonLog(s)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	args := []string{
		"run",
		"--db", s.dbPath,
		"--config", globalConfigPath,
		"--log-level", s.logLevel,
		"--log-format", s.logFormat,
	}
	pid, exited, err := spawnCollector(args, logFile)
	if err != nil {
		return fmt.Errorf("failed to start collector: %w", err)
	}

	if err := waitForRun(cmd.Context(), s, pid, exited); err != nil {
		return err
	}
	fmt.Fprintln(out, ok.Sprintf("✓ Collector started (PID: %d)", pid))
	fmt.Fprintln(out, muted.Sprintf("  logs: %s", logFile.Name()))
	return nil
}

// waitForRun polls until the spawned collector holds the lock and has
// recorded its run.
func waitForRun(ctx context.Context, s settings, pid int, exited <-chan error) error {
	deadline := time.Now().Add(startWait)
	for time.Now().Before(deadline) {
		select {
		case err := <-exited:
			if err == nil {
				err = errors.New("exited")
			}
			return fmt.Errorf("collector (PID %d) stopped during startup: %w; see %s", pid, err, daemonLogPath(s))
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
		running, err := collectorRunning(s.lockPath)
		if err != nil {
			return err
		}
		if !running {
			continue
		}
		if recorded, err := latestRunPID(ctx, s); err == nil && recorded == pid {
			return nil
		}
	}
	return fmt.Errorf("collector (PID %d) did not report ready within %s; see %s", pid, startWait, daemonLogPath(s))
}

func latestRunPID(ctx context.Context, s settings) (int, error) {
	st, err := openStore(s)
	if err != nil {
		return 0, err
	}
	defer closeStore(st)
	run, err := st.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to load runs: %w", err)
	}
	return run.PID, nil
}

func startDetached(args []string, logFile *os.File) (int, <-chan error, error) {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	c := exec.Command(exe, args...)
	c.Stdin = nil
	c.Stdout = logFile
	c.Stderr = logFile
	c.SysProcAttr = detachAttr()
	if err := c.Start(); err != nil {
		return 0, nil, err
	}
	exited := make(chan error, 1)
	go func() { exited <- c.Wait() }()
	return c.Process.Pid, exited, nil
}

func daemonLogPath(s settings) string {
	return filepath.Join(filepath.Dir(s.dbPath), "daemon.log")
}

func openDaemonLog(s settings) (*os.File, error) {
	path := daemonLogPath(s)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
