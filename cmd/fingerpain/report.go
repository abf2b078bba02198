package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hhushhas/fingerpain/internal/stats"
)

const defaultAppLimit = 10

var (
	appsRange    string
	appsLimit    int
	peakRange    string
	peakLimit    int
	heatmapRange string
	trendRange   string
)

type periodCmd struct {
	use   string
	short string
	kind  stats.RangeKind
}

var periodCmds = []periodCmd{
	{use: "today", short: "Show today's typing statistics", kind: stats.Today},
	{use: "yesterday", short: "Show yesterday's typing statistics", kind: stats.Yesterday},
	{use: "week", short: "Show this week's typing statistics", kind: stats.ThisWeek},
	{use: "month", short: "Show this month's typing statistics", kind: stats.ThisMonth},
	{use: "year", short: "Show this year's typing statistics", kind: stats.ThisYear},
}

func newPeriodCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(periodCmds))
	for _, p := range periodCmds {
		rng := stats.TimeRange{Kind: p.kind}
		cmds = append(cmds, &cobra.Command{
			Use:   p.use,
			Short: p.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showSummary(cmd, rng)
			},
		})
	}
	return cmds
}

func newRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range START END",
		Short: "Show statistics for a custom date range (YYYY-MM-DD, inclusive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := stats.DateRange(args[0], args[1], time.Local)
			if err != nil {
				return err
			}
			return showSummary(cmd, rng)
		},
	}
}

func newAppsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Show per-app typing breakdown",
		Args:  cobra.NoArgs,
		RunE:  runAppsCmd,
	}
	cmd.Flags().StringVarP(&appsRange, "range", "r", "week", "time range (today, week, month, year, 30d, all, ...)")
	cmd.Flags().IntVarP(&appsLimit, "limit", "l", defaultAppLimit, "number of apps to show")
	return cmd
}

func newPeakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peak",
		Short: "Show peak typing times",
		Args:  cobra.NoArgs,
		RunE:  runPeakCmd,
	}
	cmd.Flags().StringVarP(&peakRange, "range", "r", "month", "time range (today, week, month, year, 30d, all, ...)")
	cmd.Flags().IntVarP(&peakLimit, "limit", "l", stats.DefaultPeakLimit, "number of peak minutes to show")
	return cmd
}

func newHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show typing by weekday and hour",
		Args:  cobra.NoArgs,
		RunE:  runHeatmapCmd,
	}
	cmd.Flags().StringVarP(&heatmapRange, "range", "r", "30d", "time range (today, week, month, year, 30d, all, ...)")
	return cmd
}

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show daily typing totals",
		Args:  cobra.NoArgs,
		RunE:  runTrendCmd,
	}
	cmd.Flags().StringVarP(&trendRange, "range", "r", "30d", "time range (today, week, month, year, 30d, all, ...)")
	return cmd
}

func renderOptions(cmd *cobra.Command) stats.Options {
	return stats.Options{Color: stats.ShouldUseColor(cmd.OutOrStdout())}
}

func showSummary(cmd *cobra.Command, rng stats.TimeRange) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	start, end := rng.Bounds(time.Now())
	summary, err := st.Stats(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return stats.RenderSummary(cmd.OutOrStdout(), rng.Label(), summary, renderOptions(cmd))
}

func runAppsCmd(cmd *cobra.Command, _ []string) error {
	rng, err := stats.ParseRange(appsRange)
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

	start, end := rng.Bounds(time.Now())
	apps, err := st.AppStats(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("failed to load app stats: %w", err)
	}
	return stats.RenderApps(cmd.OutOrStdout(), apps, appsLimit, renderOptions(cmd))
}

func runPeakCmd(cmd *cobra.Command, _ []string) error {
	rng, err := stats.ParseRange(peakRange)
	if err != nil {
		return err
	}
	if peakLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
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

	start, end := rng.Bounds(time.Now())
	peaks, err := st.PeakTimes(cmd.Context(), start, end, peakLimit)
	if err != nil {
		return fmt.Errorf("failed to load peak times: %w", err)
	}
	return stats.RenderPeaks(cmd.OutOrStdout(), peaks, renderOptions(cmd))
}

func runHeatmapCmd(cmd *cobra.Command, _ []string) error {
	rng, err := stats.ParseRange(heatmapRange)
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
	hourly, err := st.HourlyStats(cmd.Context(), start, end, now.Location())
	if err != nil {
		return fmt.Errorf("failed to load hourly stats: %w", err)
	}
	return stats.RenderHeatmap(cmd.OutOrStdout(), hourly, renderOptions(cmd))
}

func runTrendCmd(cmd *cobra.Command, _ []string) error {
	rng, err := stats.ParseRange(trendRange)
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

	report, err := stats.BuildReport(cmd.Context(), st, rng, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return stats.RenderTrend(cmd.OutOrStdout(), report.Daily, report.Start, report.End, renderOptions(cmd))
}
