package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/taskdeck/internal/config"
)

const secretMask = "********"

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and manage configuration",
		Long: `View and manage taskdeck configuration.

Configuration is loaded from multiple sources with this priority:
  1. CLI flags (--storage, --data)
  2. Environment variables (TASKDECK_*)
  3. Project: .taskdeck/config.yaml (or --config)
  4. User: ~/.taskdeck/config.yaml
  5. System: /etc/taskdeck/config.yaml
  6. Defaults: built-in values

Subcommands:
  show   Show merged configuration
  get    Get a specific config value
  set    Set a config value
  init   Write a default project config

Examples:
  taskdeck config show --source
  taskdeck config get storage.driver
  taskdeck config set storage.driver sqlite
  taskdeck config set --user log.level info`,
	}

	cmd.AddCommand(
		newConfigShowCmd(opts),
		newConfigGetCmd(opts),
		newConfigSetCmd(),
		newConfigInitCmd(),
	)
	return cmd
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show merged configuration",
		Long: `Show the merged configuration from all sources.

By default, outputs valid YAML. Use --source to see where each value comes from.
Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tc, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showSource {
				return printConfigWithSources(out, tc)
			}
			return printConfigAsYAML(out, maskSecrets(tc.Config))
		},
	}

	cmd.Flags().BoolVar(&showSource, "source", false, "Show source for each value")
	return cmd
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd(opts *globalOptions) *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a specific config value",
		Long: `Get a specific configuration value by key.

Keys use dot notation for nested values (e.g., "storage.s3.bucket").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			tc, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}
			value, err := tc.Config.GetValue(key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showSource {
				_, _ = fmt.Fprintf(out, "%s (from %s)\n", value, tc.GetTrackedSource(key))
			} else {
				_, _ = fmt.Fprintln(out, value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSource, "source", false, "Show source of the value")
	return cmd
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	var (
		setProject bool
		setUser    bool
	)

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: `Set a configuration value.

By default, values are saved to the project config (.taskdeck/config.yaml).

  --project  Save to .taskdeck/config.yaml (default)
  --user     Save to ~/.taskdeck/config.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			targetPath := filepath.Join(config.DeckDir, config.ConfigFileName)
			if setUser {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("get home directory: %w", err)
				}
				targetPath = filepath.Join(home, config.DeckDir, config.ConfigFileName)
			}

			cfg, err := config.LoadFrom(targetPath)
			if err != nil {
				return fmt.Errorf("load config from %s: %w", targetPath, err)
			}
			if err := cfg.SetValue(key, value); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(targetPath); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			shown := value
			if config.IsSecret(key) {
				shown = secretMask
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, shown, targetPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&setProject, "project", false, "Save to project config (.taskdeck/config.yaml)")
	cmd.Flags().BoolVar(&setUser, "user", false, "Save to user config (~/.taskdeck/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("project", "user")
	return cmd
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default project config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Init(".", force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")
	return cmd
}

// printConfigAsYAML outputs the config as valid YAML.
func printConfigAsYAML(out io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, _ = fmt.Fprint(out, string(data))
	return nil
}

// printConfigWithSources outputs config values with source annotations.
func printConfigWithSources(out io.Writer, tc *config.TrackedConfig) error {
	paths := config.AllConfigPaths()
	sort.Strings(paths)

	for _, path := range paths {
		value, err := tc.Config.GetValue(path)
		if err != nil {
			continue
		}
		if config.IsSecret(path) && value != "" {
			value = secretMask
		}
		_, _ = fmt.Fprintf(out, "%s = %s (%s)\n", path, value, tc.GetTrackedSource(path))
	}
	return nil
}

func maskSecrets(cfg *config.Config) *config.Config {
	c := *cfg
	if c.Auth.Password != "" {
		c.Auth.Password = secretMask
	}
	if c.Storage.S3.SecretAccessKey != "" {
		c.Storage.S3.SecretAccessKey = secretMask
	}
	return &c
}
