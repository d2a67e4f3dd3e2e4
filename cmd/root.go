package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khrees2412/applytrack/internal/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "applytrack",
	Short: "Job application tracker for seekers and recruiters",
	Long: `Applytrack reconciles job applications from the job board backend.
Seekers see their own applications; recruiters see applicants across every job they own.
Statuses can be updated one at a time or in bulk, and the watch view refreshes automatically.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize app with all dependencies
		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		cmd.SetContext(app.SetAppInContext(cmd.Context(), application))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application := app.GetAppFromContext(cmd.Context()); application != nil {
			return application.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	// Ctrl-C cancels the command context, which stops the watch loop
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("role", "", "Override the configured role (seeker, recruiter)")
	rootCmd.PersistentFlags().String("user", "", "Override the configured user id")
}
