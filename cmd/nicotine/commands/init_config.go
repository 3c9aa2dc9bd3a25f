package commands

import (
	"fmt"

	"github.com/isomerc/nicotine/internal/config"
	"github.com/spf13/cobra"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config.toml",
	Long: `Write config.toml with defaults sized for the current display,
overwriting any existing file.`,
	Args: cobra.NoArgs,
	RunE: runInitConfig,
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path, err := config.InitFile(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("✓ Wrote default config to %s\n", path)
	return nil
}
