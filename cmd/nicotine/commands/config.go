package commands

import (
	"fmt"
	"os"

	"github.com/isomerc/nicotine/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect nicotine configuration",
	Long:  `View the effective configuration and where it is stored.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: the file merged with defaults,
NICOTINE_* environment variables and flags.`,
	Example: `  # Show configuration as YAML (default)
  nicotine config show

  # Show configuration as TOML, ready to paste into config.toml
  nicotine config show --format toml`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the paths of config.toml and characters.txt.`,
	RunE:  runConfigPath,
}

var formatFlag string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().StringVarP(&formatFlag, "format", "f", "yaml", "output format (yaml, json or toml)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := config.Encode(configMgr.Get(), formatFlag)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(configMgr.Path())
	fmt.Println(configMgr.CharactersPath())
	return nil
}
