package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ternarybob/marketbrief/internal/models"
)

// printHistory writes one row per run, newest first
func printHistory(w io.Writer, runs []*models.RunRecord, loc *time.Location) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tSTOCKS\tPICKS\tINDICES\tDELIVERED\tDURATION\tERROR")
	for _, r := range runs {
		source := string(r.IndexSource)
		if source == "" {
			source = "-"
		}
		delivered := "no"
		switch {
		case r.DryRun:
			delivered = "dry-run"
		case r.Delivered:
			delivered = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			r.StartedAt.In(loc).Format("2006-01-02 15:04"),
			r.Status,
			r.StocksAnalyzed,
			r.PortfolioPicks,
			source,
			delivered,
			r.Duration.Round(time.Second),
			r.Error,
		)
	}
	tw.Flush()
}
