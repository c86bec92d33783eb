// internal/cli/config.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

var saveConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after flags are applied.

With --save the configuration is written to the config file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&saveConfig, "save", false, "write the effective configuration to the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if !saveConfig {
		return nil
	}

	path := cfgFile
	if path == "" {
		path = core.DefaultConfigPath()
	}
	if err := core.SaveConfig(config, path); err != nil {
		return err
	}
	log.Info("saved config to %s", path)
	return nil
}
