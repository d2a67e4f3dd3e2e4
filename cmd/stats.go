package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/khrees2412/applytrack/internal/app"
	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View application statistics",
	Long:  "Display aggregate counts over the reconciled application list, a per-status breakdown and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		session, err := sessionFromFlags(cmd, application)
		if err != nil {
			return err
		}

		list, err := application.Refresh(cmd.Context(), session)
		if err := fetchOutcome(cmd.OutOrStdout(), list, err); err != nil {
			return err
		}

		if len(list.Applications) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No applications yet.")
			return nil
		}

		renderStats(cmd.OutOrStdout(), list, time.Now())
		return nil
	},
}

func renderStats(w io.Writer, list models.ReconciledList, now time.Time) {
	stats := list.Stats

	fmt.Fprintln(w, titleStyle.Render("Application Statistics"))

	fmt.Fprintf(w, "%s\n", labelStyle.Render("Overview"))
	fmt.Fprintf(w, "  Total Applications: %d\n", stats.Total)
	fmt.Fprintf(w, "  Pending: %d\n", stats.Pending)
	fmt.Fprintf(w, "  Reviewed: %d\n", stats.Reviewed)
	fmt.Fprintf(w, "  Shortlisted: %d\n", stats.Shortlisted)
	fmt.Fprintf(w, "  Accepted: %d\n", stats.Accepted)
	fmt.Fprintf(w, "  Rejected: %d\n", stats.Rejected)

	if stats.Total > 0 {
		fmt.Fprintf(w, "\n%s\n", labelStyle.Render("Response Rate"))
		fmt.Fprintf(w, "  Response Rate: %.1f%%\n", stats.ResponseRate())
		if stats.Accepted > 0 {
			fmt.Fprintf(w, "  Acceptance Rate: %.1f%%\n", float64(stats.Accepted)/float64(stats.Total)*100)
		}
	}

	// Status breakdown in pipeline order
	fmt.Fprintf(w, "\n%s\n", labelStyle.Render("Status Breakdown"))
	for _, s := range status.AllDisplay() {
		count := stats.ByStatus[s]
		if count == 0 {
			continue
		}
		percentage := float64(count) / float64(stats.Total) * 100
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", statusStyle(s).Render(status.Label(s)), count, percentage)
	}

	// Recent activity
	recent := []models.Application{}
	for _, a := range list.Applications {
		if !a.AppliedAt.IsZero() && now.Sub(a.AppliedAt) < 30*24*time.Hour {
			recent = append(recent, a)
		}
	}
	if len(recent) > 0 {
		fmt.Fprintf(w, "\n%s\n", labelStyle.Render("Recent Activity"))
		for _, a := range recent {
			fmt.Fprintf(w, "  %s: %s at %s (%s)\n", a.AppliedAt.Local().Format("Jan 2"), a.JobTitle, a.CompanyName, status.Label(a.Status))
		}
	}

	if list.Stale {
		fmt.Fprintf(w, "\n%s\n", warnStyle.Render("Figures are from the last successful fetch."))
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
