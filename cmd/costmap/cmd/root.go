// Package cmd implements the costmap command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aecstation/costmap/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool
	logLevel   string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "costmap",
	Short: "BIM model and cost budget reconciliation",
	Long: `Costmap reconciles a building model's type catalog against a cost
budget. It parses BC3 budget files, links budget items to model types
with a cascade of matching strategies, and reports the conflicts
between the two catalogs at a configurable analysis depth.`,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.costmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-warning output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	for _, name := range []string{"verbose", "quiet", "log-level"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", name, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".costmap")
		}
	}

	// .env files load before Viper env binding; .env.local overrides .env.
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Read config file, ignore error if not found.
	_ = viper.ReadInConfig()
}

// setupLogging configures the default logger from the viper-merged
// sources. Precedence: flags, then environment, then .env, then the
// config file, then defaults.
func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(determineLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if viper.GetString("log-format") == "json" {
		logger = logging.NewJSON(os.Stderr)
	} else {
		logger = logging.NewConsole()
	}
	logging.SetDefault(logger)
	logging.Debug().Str("level", level.String()).Msg("logging configured")
	return nil
}

// determineLogLevel resolves the level from viper, which merges the
// --log-level and -v/-q flags with LOG_LEVEL, the config file and .env.
func determineLogLevel() string {
	if level := viper.GetString("log-level"); level != "" {
		return validateLogLevel(level)
	}
	verbose, quiet := viper.GetBool("verbose"), viper.GetBool("quiet")
	switch {
	case verbose && quiet:
		fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		return zerolog.WarnLevel.String()
	case verbose:
		return zerolog.DebugLevel.String()
	case quiet:
		return zerolog.WarnLevel.String()
	}
	return zerolog.InfoLevel.String()
}

// validateLogLevel returns a valid level, falling back to info.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	}
	fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using \"info\"\n", level)
	return "info"
}
