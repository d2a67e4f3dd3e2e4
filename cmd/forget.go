package cmd

import (
	"fmt"

	"github.com/khrees2412/applytrack/internal/app"
	"github.com/spf13/cobra"
)

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Delete the saved application list for this identity",
	Long: `Delete the last successfully fetched list kept for the configured role and user.
Until the next successful fetch, a backend failure shows no applications.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		session, err := sessionFromFlags(cmd, application)
		if err != nil {
			return err
		}
		if err := application.ForgetSnapshot(session); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved list cleared for %s %s\n", session.Role, session.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}
