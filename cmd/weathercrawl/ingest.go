package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/usecase"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var purgeConfirmed bool

//nolint:gochecknoglobals // Cobra commands are typically global
var (
	backfillCmd = &cobra.Command{
		Use:   "backfill",
		Short: "Crawl the full history of the station up to today",
		Long: `Backfill walks month pages backward from the current month until the
source stops returning data or BACKFILL_START is reached. Existing records
are never overwritten, so the command can be rerun safely.`,
		RunE: runBackfill,
	}

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Crawl the days after the newest stored record",
		RunE:  runUpdate,
	}

	purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete every stored record",
		RunE:  runPurge,
	}
)

func init() {
	rootCmd.AddCommand(backfillCmd, updateCmd, purgeCmd)
	purgeCmd.Flags().BoolVar(&purgeConfirmed, "yes", false, "confirm deletion of all records")
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Backfilling %s from %s...\n", cfg.LocationName, cfg.BackfillStart)
	report, err := a.ingestor.FullBackfill(cmd.Context())
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.ingestor.IncrementalUpdate(cmd.Context())
	if errors.Is(err, usecase.ErrBackfillRequired) {
		fmt.Fprintf(cmd.OutOrStdout(), "No existing data for %s. Run 'weathercrawl backfill' first.\n", cfg.LocationName)
		return err
	}
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	if !purgeConfirmed {
		return errors.New("refusing to purge without --yes")
	}
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.ingestor.Purge(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %s records.\n", humanize.Comma(deleted))
	return nil
}

func printReport(w io.Writer, r *entity.IngestReport) {
	if r.Status == entity.IngestStatusUpToDate {
		fmt.Fprintf(w, "Data for %s is already up to date.\n", r.Location)
		return
	}
	fmt.Fprintf(w, "%s of %s finished: %s..%s\n", r.Mode, r.Location, r.Start, r.End)
	fmt.Fprintf(w, "  months fetched: %s\n", humanize.Comma(int64(r.MonthsDispatched)))
	fmt.Fprintf(w, "  days collected: %s\n", humanize.Comma(int64(r.Collected)))
	fmt.Fprintf(w, "  inserted: %s, already stored: %s\n", humanize.Comma(int64(r.Inserted)), humanize.Comma(int64(r.Ignored)))
	if r.Exhausted {
		fmt.Fprintf(w, "  source exhausted at %s (%s)\n", r.ExhaustedAt, r.ExhaustionReason)
	}
	fmt.Fprintf(w, "  took %s\n", r.Duration.Round(time.Millisecond))
}
