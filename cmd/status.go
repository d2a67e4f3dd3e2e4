package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/khrees2412/applytrack/internal/app"
	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Manage application statuses",
	Long:  "Update application statuses one at a time or in bulk, and review past updates",
}

var updateStatusCmd = &cobra.Command{
	Use:   "update <applicant-id> <job-id>",
	Short: "Update one application's status",
	Args:  cobra.ExactArgs(2),
	Example: `  applytrack status update a1 j1 --status to_interview
  applytrack status update a1 j1 --status rejected`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		session, err := sessionFromFlags(cmd, application)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetString("status")
		if raw == "" {
			return fmt.Errorf("status is required. Use --status flag")
		}
		newStatus, err := status.ParseDisplay(raw)
		if err != nil {
			return err
		}

		key := models.ApplicationKey{ApplicantID: args[0], JobID: args[1]}
		if err := application.UpdateStatus(cmd.Context(), session, key, newStatus); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("✗ "+err.Error()))
			return fmt.Errorf("status update failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Application %s updated to: %s\n", key, status.Label(newStatus))
		return nil
	},
}

var bulkStatusCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Update many applications to the same status",
	Long: `Update many applications to the same status. Each application is updated
independently: failures are reported, successful updates are kept.`,
	Example: `  applytrack status bulk --status shortlisted --pair a1:j1 --pair a2:j1
  applytrack status bulk --status rejected --batch pairs.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		session, err := sessionFromFlags(cmd, application)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetString("status")
		if raw == "" {
			return fmt.Errorf("status is required. Use --status flag")
		}
		newStatus, err := status.ParseDisplay(raw)
		if err != nil {
			return err
		}

		pairs, _ := cmd.Flags().GetStringArray("pair")
		batchFile, _ := cmd.Flags().GetString("batch")

		keys := []models.ApplicationKey{}
		for _, p := range pairs {
			key, err := parseKey(p)
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}
		if batchFile != "" {
			data, err := os.ReadFile(batchFile)
			if err != nil {
				return fmt.Errorf("error reading batch file: %w", err)
			}
			fileKeys, err := parseBatch(string(data))
			if err != nil {
				return err
			}
			keys = append(keys, fileKeys...)
		}

		if len(keys) == 0 {
			return fmt.Errorf("no applications given. Use --pair or --batch")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updating %d applications to %s\n", len(keys), status.Label(newStatus))
		result := application.BulkUpdateStatus(cmd.Context(), session, keys, newStatus)
		renderBulkResult(cmd.OutOrStdout(), result)

		if len(result.Failed) > 0 {
			return fmt.Errorf("%d of %d updates failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent status updates issued from this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		updates, err := application.Store.RecentStatusUpdates(limit)
		if err != nil {
			return fmt.Errorf("error fetching status history: %w", err)
		}
		if len(updates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No status updates yet.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, titleStyle.Render("Status Updates"))
		for _, u := range updates {
			mark := "✓"
			if !u.Succeeded {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s  %s-%s → %s",
				mark, u.CreatedAt.Local().Format("Jan 2 15:04"), u.ApplicantID, u.JobID,
				statusStyle(u.DisplayStatus).Render(status.Label(u.DisplayStatus)))
			if u.Message != "" {
				fmt.Fprintf(w, " (%s)", u.Message)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

// parseKey parses "applicantId:jobId" or "applicantId,jobId"
func parseKey(raw string) (models.ApplicationKey, error) {
	sep := ":"
	if !strings.Contains(raw, sep) {
		sep = ","
	}
	parts := strings.SplitN(raw, sep, 2)
	if len(parts) != 2 {
		return models.ApplicationKey{}, fmt.Errorf("invalid pair %q: expected applicantId:jobId", raw)
	}
	key := models.ApplicationKey{
		ApplicantID: strings.TrimSpace(parts[0]),
		JobID:       strings.TrimSpace(parts[1]),
	}
	if key.ApplicantID == "" || key.JobID == "" {
		return models.ApplicationKey{}, fmt.Errorf("invalid pair %q: expected applicantId:jobId", raw)
	}
	return key, nil
}

// parseBatch reads one pair per line, skipping blank lines and # comments
func parseBatch(data string) ([]models.ApplicationKey, error) {
	keys := []models.ApplicationKey{}
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, err := parseKey(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func renderBulkResult(w io.Writer, result models.BulkResult) {
	for _, key := range result.Succeeded {
		fmt.Fprintf(w, "  ✓ %s\n", key)
	}
	for _, failure := range result.Failed {
		fmt.Fprintf(w, "  %s\n", errorStyle.Render(fmt.Sprintf("✗ %s: %s", failure.Key, failure.Message)))
	}

	fmt.Fprintf(w, "\n✓ Successfully updated %d applications\n", len(result.Succeeded))
	if len(result.Failed) > 0 {
		fmt.Fprintf(w, "✗ Failed to update %d applications\n", len(result.Failed))
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(updateStatusCmd)
	statusCmd.AddCommand(bulkStatusCmd)
	statusCmd.AddCommand(historyCmd)

	validStatuses := "applied, to_review, shortlisted, to_interview, interviewed, selected, hired, rejected"
	updateStatusCmd.Flags().String("status", "", "New status ("+validStatuses+")")

	bulkStatusCmd.Flags().String("status", "", "New status ("+validStatuses+")")
	bulkStatusCmd.Flags().StringArray("pair", nil, "Application as applicantId:jobId (repeatable)")
	bulkStatusCmd.Flags().String("batch", "", "File with one applicantId,jobId per line")

	historyCmd.Flags().Int("limit", 20, "Number of entries to show")
}
