package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hhushhas/fingerpain/internal/daemon"
	"github.com/hhushhas/fingerpain/internal/model"
	"github.com/hhushhas/fingerpain/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedStore(t *testing.T, dbPath string, recs ...model.KeystrokeRecord) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	for _, rec := range recs {
		_, err := st.UpsertKeystroke(context.Background(), rec)
		require.NoError(t, err)
	}
}

func TestLoadSettingsConfigUnderFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[daemon]
db = "`+filepath.Join(dir, "from-config.db")+`"
idle-timeout = "9s"
poll-interval = "50ms"

[logging]
level = "debug"
`), 0o644))

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--idle-timeout", "3s", "--log-format", "json"}))

	s, err := loadSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-config.db"), s.dbPath)
	assert.Equal(t, filepath.Join(dir, "from-config.db.lock"), s.lockPath)
	assert.Equal(t, 3*time.Second, s.idleTimeout, "flag wins over config")
	assert.Equal(t, 50*time.Millisecond, s.pollInterval)
	assert.Equal(t, "debug", s.logLevel)
	assert.Equal(t, "json", s.logFormat)
}

func TestLoadSettingsRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[daemon]\nidle-timeout = \"soon\"\n"), 0o644))

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath}))

	_, err = loadSettings(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idle-timeout")
}

func TestTodayCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fingerpain.db")
	seedStore(t, dbPath, model.KeystrokeRecord{
		Timestamp: time.Now(),
		AppName:   "Editor",
		AppID:     "com.example.editor",
		CharCount: 1234,
		WordCount: 200,
	})

	out, err := execute(t, "today", "--db", dbPath, "--config", filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Today Statistics")
	assert.Contains(t, out, "1.2K (net: 1234)")
}

func TestRangeCommandRejectsBadDates(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "range", "2024-06-05", "2024-06-01", "--db", filepath.Join(dir, "f.db"), "--config", filepath.Join(dir, "c.toml"))
	require.Error(t, err)
}

func TestAppsCommandUnknownRange(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "apps", "--range", "fortnight", "--db", filepath.Join(dir, "f.db"), "--config", filepath.Join(dir, "c.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fortnight")
}

func TestExportCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fingerpain.db")
	ts := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	seedStore(t, dbPath, model.KeystrokeRecord{
		Timestamp:     ts,
		AppName:       "Chrome",
		AppID:         "com.google.chrome",
		CharCount:     80,
		WordCount:     12,
		BrowserDomain: "github.com",
	})

	outPath := filepath.Join(dir, "out.csv")
	_, err := execute(t, "export", "--format", "csv", "--range", "all", "--output", outPath,
		"--db", dbPath, "--config", filepath.Join(dir, "c.toml"))
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-06-03T09:00:00Z", rows[1][0])
	assert.Equal(t, "github.com", rows[1][7])
}

func TestStatusNotRunning(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "status", "--db", filepath.Join(dir, "fingerpain.db"), "--config", filepath.Join(dir, "c.toml"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "not running"), out)
}

func TestStopNotRunning(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "stop", "--db", filepath.Join(dir, "fingerpain.db"), "--config", filepath.Join(dir, "c.toml"))
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestCollectorRunningSeesHeldLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "daemon.lock")
	running, err := collectorRunning(lockPath)
	require.NoError(t, err)
	assert.False(t, running)

	held, err := daemon.AcquireLock(lockPath)
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	running, err = collectorRunning(lockPath)
	require.NoError(t, err)
	assert.True(t, running)
}

func stubSpawn(t *testing.T, fn func(args []string, logFile *os.File) (int, <-chan error, error)) {
	t.Helper()
	prev := spawnCollector
	spawnCollector = fn
	t.Cleanup(func() { spawnCollector = prev })
}

func TestStartRefusesWhileRunning(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fingerpain.db")
	held, err := daemon.AcquireLock(lockPathFor(dbPath))
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	stubSpawn(t, func([]string, *os.File) (int, <-chan error, error) {
		t.Fatal("spawned a second collector")
		return 0, nil, nil
	})
	out, err := execute(t, "start", "--db", dbPath, "--config", filepath.Join(dir, "c.toml"))
	require.NoError(t, err)
	assert.Contains(t, out, "already running")
}

func TestStartReportsRecordedPID(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fingerpain.db")

	var gotArgs []string
	var logName string
	stubSpawn(t, func(args []string, logFile *os.File) (int, <-chan error, error) {
		gotArgs = args
		logName = logFile.Name()
		lock, err := daemon.AcquireLock(lockPathFor(dbPath))
		require.NoError(t, err)
		t.Cleanup(func() { _ = lock.Release() })

		st, err := store.Open(dbPath)
		require.NoError(t, err)
		defer func() { _ = st.Close() }()
		require.NoError(t, st.StartRun(context.Background(), model.Run{ID: "run-1", PID: 4242, StartedAt: time.Now()}))
		return 4242, make(chan error), nil
	})

	out, err := execute(t, "start", "--db", dbPath, "--config", filepath.Join(dir, "c.toml"))
	require.NoError(t, err)
	assert.Contains(t, out, "PID: 4242")
	assert.Equal(t, "run", gotArgs[0])
	assert.Contains(t, gotArgs, dbPath)
	assert.Equal(t, filepath.Join(dir, "daemon.log"), logName)
}

func TestStartReportsEarlyExit(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fingerpain.db")
	stubSpawn(t, func([]string, *os.File) (int, <-chan error, error) {
		exited := make(chan error, 1)
		exited <- assert.AnError
		return 99, exited, nil
	})

	_, err := execute(t, "start", "--db", dbPath, "--config", filepath.Join(dir, "c.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped during startup")
	assert.ErrorIs(t, err, assert.AnError)
}
