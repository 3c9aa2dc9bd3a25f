package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Stack every client onto the same rectangle",
	Long: `Move and resize every client window onto one rectangle, centered
horizontally and sized by eve_width, display_height and panel_height.`,
	Args: cobra.NoArgs,
	RunE: runStack,
}

func init() {
	rootCmd.AddCommand(stackCmd)
}

func runStack(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	windowMgr, err := openWindowManager(cfg)
	if err != nil {
		return err
	}
	defer windowMgr.Close()

	windows, err := windowMgr.ListTargetWindows()
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	r := cfg.StackRect()
	fmt.Printf("Centering %d clients (%dx%d) on %dx%d display\n",
		len(windows), r.Width, r.Height, cfg.DisplayWidth, cfg.DisplayHeight)

	if err := windowMgr.Stack(windows, r); err != nil {
		return err
	}

	fmt.Printf("✓ Stacked %d windows\n", len(windows))
	return nil
}
