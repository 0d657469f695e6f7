package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcommit/jcommit/internal/pkg/config"
	"github.com/jcommit/jcommit/internal/pkg/ui"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jcommit configuration",
		Long: `Manage jcommit configuration settings.

Configuration is stored in ~/.jcommit.toml by default. Environment
variables (OPENAI_API_KEY, JCOMMIT_MODEL, ...) override the file, and
command-line flags override both.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())

	return configCmd
}

func newConfigManager(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	return mgr, nil
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long: `Create a new configuration file at ~/.jcommit.toml with default values.

The configuration file will be created with permissions 0600 (user read/write only)
for security, as it may contain API keys. With --interactive, a short wizard
asks for the endpoint, key, and model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			if interactive {
				return ui.RunInteractiveSetup(mgr)
			}

			if err := mgr.Init(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration file created at %s\n", mgr.GetConfigPath())
			fmt.Fprintln(out, "Edit this file or use 'jcommit config set' to customize settings.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the setup wizard")
	return cmd
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value by key.

Supports nested keys using dot notation (e.g., "history.max_entries").

Examples:
  jcommit config set api_endpoint http://localhost:11434/v1
  jcommit config set api_key sk-xxx
  jcommit config set model gpt-4o-mini
  jcommit config set history.max_entries 200`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}
			if !mgr.ConfigExists() {
				return errNoConfig(mgr.GetConfigPath())
			}

			if err := mgr.Set(key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue(key, value))
			return nil
		},
	}
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			value, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), displayValue(args[0], value))
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display all current configuration values, after environment overrides.

API keys are masked for security, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newConfigManager(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range mgr.Keys() {
				value, err := mgr.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %s\n", key, displayValue(key, value))
			}
			return nil
		},
	}
}

// displayValue masks API keys.
func displayValue(key, value string) string {
	if strings.Contains(strings.ToLower(key), "api_key") && value != "" {
		return config.MaskAPIKey(value)
	}
	return value
}
