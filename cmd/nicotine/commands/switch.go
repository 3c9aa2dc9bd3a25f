package commands

import (
	"fmt"
	"strconv"

	"github.com/isomerc/nicotine/internal/daemon"
	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch N",
	Short: "Focus client number N",
	Long: `Focus client number N, counting from 1.

When characters.txt lists character names, N selects the Nth name and the
client whose title carries that name is focused.`,
	Example: `  # Focus the first client
  nicotine switch 1`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid client number: %s", args[0])
	}
	return dispatch(daemon.Switch(n))
}
