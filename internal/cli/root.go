// Package cli implements the taskdeck command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/taskdeck/internal/config"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.1.0-dev"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	cfgFile string
	storage string
	dataDir string
	jsonOut bool
	metrics bool
	events  bool
	verbose bool

	v *viper.Viper
	// configPath is the config file viper located, if any.
	configPath string
}

// flagBindings maps persistent flags to the config paths they override.
var flagBindings = map[string]string{
	"storage": "storage.driver",
	"data":    "storage.dir",
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "taskdeck",
		Short: "Projects and tasks from the terminal",
		Long: `taskdeck keeps a small list of projects and their tasks.

State is saved as one JSON snapshot after every change, in a local data
directory by default or in SQLite, PostgreSQL or S3 when configured.

Quick start:
  taskdeck login admin 1234          Sign in (required for changes)
  taskdeck projects add "Website"    Create a project
  taskdeck tasks add "Draft copy" --project <id> --deadline 2025-03-01
  taskdeck home                      Dashboard and upcoming deadlines`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is .taskdeck/config.yaml)")
	pf.StringVar(&opts.storage, "storage", "", "storage driver: file, memory, sqlite, postgres, s3")
	pf.StringVar(&opts.dataDir, "data", "", "data directory for the file driver")
	pf.BoolVar(&opts.jsonOut, "json", false, "output as JSON")
	pf.BoolVar(&opts.metrics, "metrics", false, "print store metrics to stderr after the command")
	pf.BoolVar(&opts.events, "events", false, "print change events to stderr as they happen")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	for flag, key := range flagBindings {
		_ = opts.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newHomeCmd(opts),
		newProjectsCmd(opts),
		newTasksCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and prints any error.
func Execute() error {
	ctx, cancel := SetupSignalHandler(os.Stderr)
	defer cancel()

	root := NewRootCmd()
	root.SetContext(ctx)
	cmd, err := root.ExecuteC()
	if err != nil {
		verbose, _ := cmd.Flags().GetBool("verbose")
		PrintError(cmd.ErrOrStderr(), err, verbose)
	}
	return err
}

// initConfig locates the config file with viper.
func (o *globalOptions) initConfig(cmd *cobra.Command) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		o.v.AddConfigPath(config.DeckDir)
		o.v.SetConfigType("yaml")
		o.v.SetConfigName("config")
	}

	if err := o.v.ReadInConfig(); err != nil {
		if o.cfgFile != "" {
			return fmt.Errorf("read config %s: %w", o.cfgFile, err)
		}
		return nil
	}
	o.configPath = o.v.ConfigFileUsed()
	if o.verbose {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", o.configPath)
	}
	return nil
}

// loadConfig resolves the config and validates it.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.TrackedConfig, error) {
	tc, err := o.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := tc.Config.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// resolveConfig loads the layered config and applies changed flags on top.
func (o *globalOptions) resolveConfig(cmd *cobra.Command) (*config.TrackedConfig, error) {
	tc, err := config.LoadWithSources(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	for flag, key := range flagBindings {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		if err := tc.Set(key, o.v.GetString(key), config.SourceFlag); err != nil {
			return nil, fmt.Errorf("--%s: %w", flag, err)
		}
	}
	return tc, nil
}
