package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change procdesk settings.

Settings live in config.toml inside the configuration directory. The
access key may also come from the APP_PASS environment variable, which
takes precedence over the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Stores a single configuration value, for example:

  procdesk settings set ledger.backend sqlite
  procdesk settings set runner.timeout_seconds 300

Run "procdesk settings keys" for the list of keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configurable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if _, err := requireSession(cmd); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Access]")
	cmd.Printf("  Key: %s\n", maskSecret(settings.Access.Secret))
	if settings.UsingDefaultSecret() {
		cmd.Println("  Warning: default key in use")
	}
	if settings.Access.SessionTTL > 0 {
		cmd.Printf("  Session TTL: %s\n", settings.Access.SessionTTL)
	} else {
		cmd.Println("  Session TTL: unlimited")
	}
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Work dir: %s\n", settings.Paths.WorkDir)
	cmd.Printf("  Outputs: %s\n", settings.Paths.Resolve(settings.Paths.Outputs))
	cmd.Printf("  Uploads: %s\n", settings.Paths.Resolve(settings.Paths.Uploads))
	cmd.Printf("  Plugins: %s\n", settings.Paths.Resolve(settings.Paths.Plugins))
	cmd.Println()

	cmd.Println("[Ledger]")
	cmd.Printf("  Backend: %s\n", settings.Ledger.Backend.Description())
	if settings.Ledger.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Paths.Resolve(settings.Ledger.Path))
	}
	cmd.Println()

	cmd.Println("[Runner]")
	if settings.Runner.Timeout > 0 {
		cmd.Printf("  Timeout: %s\n", settings.Runner.Timeout)
	} else {
		cmd.Println("  Timeout: none")
	}
	cmd.Printf("  Watch rate: %g/s\n", settings.Watch.MaxPerSecond)
	cmd.Printf("  pdftotext: %s\n", settings.Tools.PDFToText)
	cmd.Println()

	cmd.Printf("Config file: %s\n", settingsService.ConfigPath())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if _, err := requireSession(cmd); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := settingsService.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("%s updated.\n", key)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.ConfigPath())
	return nil
}

// parseValue converts a command line value to the TOML type it reads as.
func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:2] + "..." + key[len(key)-2:]
}
