package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hhushhas/fingerpain/internal/export"
	"github.com/hhushhas/fingerpain/internal/stats"
)

var (
	exportFormat  string
	exportOutput  string
	exportRange   string
	exportSummary bool
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data to CSV, JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (csv, json, yaml)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().StringVarP(&exportRange, "range", "r", "all", "time range (today, week, month, year, 30d, all, ...)")
	cmd.Flags().BoolVar(&exportSummary, "summary", false, "export only the summary (no per-minute records)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	rng, err := stats.ParseRange(exportRange)
	if err != nil {
		return err
	}
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	now := time.Now()
	start, end := rng.Bounds(now)
	req := export.Request{
		Format:      format,
		Start:       start,
		End:         end,
		SummaryOnly: exportSummary,
		Now:         now,
	}

	if exportOutput == "" {
		return export.Write(cmd.Context(), cmd.OutOrStdout(), st, req)
	}
	return writeExportFile(cmd, exportOutput, func(w io.Writer) error {
		return export.Write(cmd.Context(), w, st, req)
	})
}

// writeExportFile writes to a temp file next to path and renames it into place.
func writeExportFile(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fingerpain-export-*")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return err
}
