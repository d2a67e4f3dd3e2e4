package cmd

import (
	"fmt"
	"io"

	"github.com/khrees2412/applytrack/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
	// config commands must work even when the stored config is invalid,
	// so they skip building the App
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(err.Error()))
		}
		return nil
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.AppConfig == nil {
			return fmt.Errorf("configuration not loaded")
		}
		renderConfig(cmd.OutOrStdout(), config.GetConfigPath(), config.AppConfig)
		return nil
	},
}

func renderConfig(w io.Writer, path string, cfg *config.Config) {
	fmt.Fprintln(w, titleStyle.Render("Configuration"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Config File:"), path)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("API Base URL:"), cfg.APIBaseURL)

	// Show if the token is configured (but don't show the actual token)
	if cfg.APIToken != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("API Token:"), "✓ Configured")
	} else {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("API Token:"), "✗ Not configured")
	}

	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Role:"), cfg.Role)
	if cfg.UserID != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("User ID:"), cfg.UserID)
	} else {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("User ID:"), "✗ Not configured")
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Poll Interval:"), cfg.PollInterval)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Request Timeout:"), cfg.RequestTimeout)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Sort Order:"), cfg.SortOrder)
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Enrich Concurrency:"), cfg.EnrichConcurrency)
	fmt.Fprintf(w, "%s %s (%s)\n", labelStyle.Render("Log Level:"), cfg.LogLevel, cfg.Env)
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  applytrack config set --key api_base_url --value https://jobs.example.com/api
  applytrack config set --key api_token --value eyJhbGciOi...
  applytrack config set --key role --value recruiter
  applytrack config set --key user_id --value rec-42
  applytrack config set --key poll_interval --value 1m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" || value == "" {
			return fmt.Errorf("both --key and --value are required")
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("error updating config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration updated: %s\n", key)

		// Reload config so an invalid value is reported right away
		if err := config.Initialize(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("Warning: Could not reload config: %v", err)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	// Flags for set command
	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
