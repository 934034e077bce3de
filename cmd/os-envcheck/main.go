package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/open-edge-platform/os-envcheck/internal/config"
	"github.com/open-edge-platform/os-envcheck/internal/ospackage/rpmdb"
	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
	"github.com/open-edge-platform/os-envcheck/internal/utils/system"
)

// Root command flags
var (
	configFile string
	logLevel   string
	verbose    bool
)

// Set by the logging hook before any subcommand runs
var (
	runID    string
	helpers  = config.NewConfigHelpers(config.Global())
	detector = system.DefaultDetector
)

func main() {
	rootCmd := createRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand builds the command tree
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "os-envcheck",
		Short: "Host environment checks for container integration tests",
		Long: `os-envcheck answers the questions integration-test harnesses ask about
the host they run on: which RPM builds are installed, which distribution
this is, what SELinux thinks of a path, and how a sysconfig OPTIONS line
should be rewritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Configuration file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides --verbose)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(createRPMCommand())
	rootCmd.AddCommand(createDistroCommand())
	rootCmd.AddCommand(createSELinuxCommand())
	rootCmd.AddCommand(createOptionsCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks installs initialize on every subcommand that does not
// bring its own persistent hook
func attachLoggingHooks(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		if sub.PersistentPreRunE == nil {
			sub.PersistentPreRunE = initialize
		}
		attachLoggingHooks(sub)
	}
}

// resolveRequestedLogLevel returns the level asked for on the command line,
// or "" when the config file should decide
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
		return "debug"
	}
	return ""
}

// initialize loads the configuration, sets up logging and wires the shared
// package cache and distro detector to it
func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig(configFile)
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)
	helpers = config.NewConfigHelpers(cfg)

	level := resolveRequestedLogLevel(cmd)
	if level == "" {
		level = helpers.LogLevel()
	}
	z, err := logger.New(level)
	if err != nil {
		return err
	}
	runID = uuid.NewString()
	logger.Init(z.With("run", runID))

	d, err := helpers.Detector()
	if err != nil {
		return fmt.Errorf("invalid distro probe configuration: %w", err)
	}
	detector = d

	rpmdb.SetShared(rpmdb.NewCache(rpmdb.WithCommand(helpers.RPMCommand())))

	logger.Logger().Debugf("Running %s (config %q, level %s)", cmd.CommandPath(), configFile, logger.Level())
	return nil
}
