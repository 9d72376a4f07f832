package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/weather-crawler/internal/entity"
)

//nolint:gochecknoglobals // Command flags need to be global for cobra
var (
	reportLocation string
	startYear      int
	endYear        int
	seriesYear     int
	seriesMonth    int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var (
	monthlyCmd = &cobra.Command{
		Use:   "monthly",
		Short: "Print the mean temperature of each calendar month over a range of years",
		Example: `  weathercrawl monthly --start-year 1991 --end-year 2020
  weathercrawl monthly --start-year 1900 --end-year 1950 --location ""`,
		RunE: runMonthly,
	}

	dailyCmd = &cobra.Command{
		Use:     "daily",
		Short:   "Print the mean temperature of every day of one month",
		Example: `  weathercrawl daily --year 2024 --month 2`,
		RunE:    runDaily,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the newest stored date and record count",
		RunE:  runStatus,
	}
)

func init() {
	rootCmd.AddCommand(monthlyCmd, dailyCmd, statusCmd)

	for _, c := range []*cobra.Command{monthlyCmd, dailyCmd, statusCmd} {
		c.Flags().StringVar(&reportLocation, "location", "", "location to report on; empty string for all (default LOCATION_NAME)")
	}

	monthlyCmd.Flags().IntVar(&startYear, "start-year", 0, "first year to include")
	monthlyCmd.Flags().IntVar(&endYear, "end-year", 0, "last year to include")
	_ = monthlyCmd.MarkFlagRequired("start-year")
	_ = monthlyCmd.MarkFlagRequired("end-year")

	dailyCmd.Flags().IntVar(&seriesYear, "year", 0, "year of the month")
	dailyCmd.Flags().IntVar(&seriesMonth, "month", 0, "month number, 1-12")
	_ = dailyCmd.MarkFlagRequired("year")
	_ = dailyCmd.MarkFlagRequired("month")
}

// location returns --location when given, otherwise the configured location.
func location(cmd *cobra.Command) string {
	if cmd.Flags().Changed("location") {
		return reportLocation
	}
	return cfg.LocationName
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	months, err := a.reporter.MonthlyAggregate(cmd.Context(), location(cmd), startYear, endYear)
	if err != nil {
		return err
	}
	printMonthly(cmd.OutOrStdout(), months)
	return nil
}

func runDaily(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	days, err := a.reporter.DailySeries(cmd.Context(), location(cmd), seriesYear, time.Month(seriesMonth))
	if err != nil {
		return err
	}
	printDaily(cmd.OutOrStdout(), days)
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.reporter.Status(cmd.Context(), location(cmd))
	if err != nil {
		return err
	}
	latest := "none"
	if status.LatestDate != nil {
		latest = status.LatestDate.Format(entity.DateLayout)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "location: %s\nlatest date: %s\nrecords: %s\n",
		status.Location, latest, humanize.Comma(status.Records))
	return nil
}

func printMonthly(w io.Writer, months []entity.MonthlyAggregate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MONTH\tMEAN °C\tDAYS\t")
	for _, m := range months {
		fmt.Fprintf(tw, "%s\t%s\t%d\t\n", m.Month.String()[:3], formatTemp(m.MeanTemp), m.Samples)
	}
	tw.Flush()
}

func printDaily(w io.Writer, days []entity.DailyPoint) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DAY\tMEAN °C\t")
	for _, d := range days {
		fmt.Fprintf(tw, "%d\t%s\t\n", d.Day, formatTemp(d.MeanTemp))
	}
	tw.Flush()
}

func formatTemp(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
