package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/khrees2412/applytrack/internal/app"
	"github.com/khrees2412/applytrack/internal/reconciler"
	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reconciled applications",
	Long: `Fetch, enrich and deduplicate applications for the configured identity.
Seekers see their own applications; recruiters see applicants across all of their jobs.`,
	Example: `  applytrack list
  applytrack list --role recruiter --user rec-42 --filter to_interview
  applytrack list --sort asc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		session, err := sessionFromFlags(cmd, application)
		if err != nil {
			return err
		}

		var filter models.DisplayStatus
		if raw, _ := cmd.Flags().GetString("filter"); raw != "" {
			if filter, err = status.ParseDisplay(raw); err != nil {
				return err
			}
		}
		sortOrder, _ := cmd.Flags().GetString("sort")
		if sortOrder != "" && sortOrder != string(models.SortAsc) && sortOrder != string(models.SortDesc) {
			return fmt.Errorf("invalid sort order %q: must be asc or desc", sortOrder)
		}

		list, err := application.Refresh(cmd.Context(), session)
		if err := fetchOutcome(cmd.OutOrStdout(), list, err); err != nil {
			return err
		}

		apps := reconciler.FilterByStatus(list.Applications, filter)
		if sortOrder != "" {
			reconciler.Sort(apps, models.SortOrder(sortOrder))
		}
		renderList(cmd.OutOrStdout(), session, apps, filter)
		return nil
	},
}

// sessionFromFlags builds the session from config plus --role/--user overrides
func sessionFromFlags(cmd *cobra.Command, application *app.App) (models.Session, error) {
	role, _ := cmd.Flags().GetString("role")
	user, _ := cmd.Flags().GetString("user")
	return application.Session(role, user)
}

// fetchOutcome prints a banner when a fetch failed but a last-known-good
// list is available, and returns the error only when there is nothing to show.
func fetchOutcome(w io.Writer, list models.ReconciledList, err error) error {
	if err == nil {
		return nil
	}
	var fetchErr *reconciler.FetchError
	if errors.As(err, &fetchErr) && list.Stale {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("⚠ Could not reach the backend (%v).", fetchErr.Err)))
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  Showing last known data from %s.", list.FetchedAt.Local().Format("Jan 2 15:04"))))
		return nil
	}
	return fmt.Errorf("error fetching applications: %w", err)
}

func renderList(w io.Writer, session models.Session, apps []models.Application, filter models.DisplayStatus) {
	if len(apps) == 0 {
		if filter != "" {
			fmt.Fprintf(w, "No applications with status '%s'\n", filter)
			return
		}
		fmt.Fprintln(w, "No applications yet.")
		return
	}

	title := "Your Applications"
	if session.Role == models.RoleRecruiter {
		title = "Applicants"
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	// Group by display status, in pipeline order
	groups := map[models.DisplayStatus][]models.Application{}
	for _, a := range apps {
		groups[a.Status] = append(groups[a.Status], a)
	}

	for _, s := range status.AllDisplay() {
		group := groups[s]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d)\n", statusStyle(s).Render(status.Label(s)), len(group))
		for _, a := range group {
			renderApplication(w, session, a)
		}
	}

	fmt.Fprintf(w, "\n%s %d\n", labelStyle.Render("Total Applications:"), len(apps))
}

func renderApplication(w io.Writer, session models.Session, a models.Application) {
	if session.Role == models.RoleRecruiter {
		fmt.Fprintf(w, "  • %s <%s> for %s\n", a.ApplicantName, a.ApplicantEmail, a.JobTitle)
	} else {
		fmt.Fprintf(w, "  • %s at %s\n", a.JobTitle, a.CompanyName)
	}

	details := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Key:"), a.Key()),
		fmt.Sprintf("%s %s", labelStyle.Render("Applied:"), formatDate(a)),
	}
	if a.Location != models.PlaceholderNA {
		details = append(details, fmt.Sprintf("%s %s", labelStyle.Render("Location:"), a.Location))
	}
	fmt.Fprintf(w, "    %s\n", strings.Join(details, " | "))

	if a.FinalScore > 0 {
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("Scores:"), valueStyle.Render(fmt.Sprintf(
			"final %.0f · skills %.0f · experience %.0f · education %.0f",
			a.FinalScore, a.SkillScore, a.ExperienceScore, a.EducationScore)))
	}
}

func formatDate(a models.Application) string {
	if a.AppliedAt.IsZero() {
		return models.PlaceholderNA
	}
	return a.AppliedAt.Local().Format("Jan 2, 2006")
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("filter", "", "Filter by display status (applied, to_review, shortlisted, to_interview, interviewed, selected, hired, rejected)")
	listCmd.Flags().String("sort", "", "Sort by applied date: desc (newest first) or asc")
}
