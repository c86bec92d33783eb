// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logicalclocks/hopsdist"
	"github.com/logicalclocks/hopsdist/pkg/core"
	"github.com/logicalclocks/hopsdist/pkg/logger"
)

var (
	cfgFile      string
	rootDir      string
	manifestPath string
	logLevel     string
	debug        bool
	config       *core.Config
	log          logger.Logger = logger.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hopsdist",
	Short: "Hopsworks client packaging tool",
	Long: `hopsdist - packaging tool for the hopsworks Python client

Reads the version from the client's version file, discovers its packages
and writes a reproducible source distribution with generated metadata.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext executes the root command with ctx
func ExecuteContext(ctx context.Context) error {
	defer func() { _ = log.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/hopsdist/config.yaml or $"+core.ConfigEnv+")")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "packaging manifest (default is <root>/hopsdist.toml, then built-in)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sdistCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(packagesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		config = core.DefaultConfig()
	}

	// Override config with flags
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if debug {
		config.Debug = true
	}

	level := config.LogLevel
	if config.Debug {
		level = "debug"
	}
	log = logger.New(logger.Options{
		Level:  level,
		File:   config.LogFile,
		Output: rootCmd.ErrOrStderr(),
	})
}

func newBuilder() (*hopsdist.Builder, error) {
	return hopsdist.NewBuilder(&hopsdist.Config{
		Root:         rootDir,
		ManifestPath: manifestPath,
		Revision:     config.Revision,
		Logger:       log,
	})
}
