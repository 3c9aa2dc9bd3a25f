package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/isomerc/nicotine/internal/window"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List client windows",
	Long: `List the client windows nicotine would cycle through, in cycle order.
The focused client is marked with *.`,
	Example: `  # List clients in table format (default)
  nicotine list

  # List clients in JSON format
  nicotine list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")
}

func runList(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}

	windowMgr, err := openWindowManager(configMgr.Get())
	if err != nil {
		return err
	}
	defer windowMgr.Close()

	windows, err := windowMgr.ListTargetWindows()
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}
	// No focused window is not an error here
	active, _ := windowMgr.ActiveWindow()

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(windows)
	case "table":
		return printClientsTable(windows, active)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func printClientsTable(windows []window.Window, active window.ID) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "#\tCHARACTER\tWINDOW ID\tACTIVE")
	fmt.Fprintln(w, "-\t---------\t---------\t------")

	for i, win := range windows {
		mark := ""
		if win.ID == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, win.Title, win.ID, mark)
	}

	return nil
}
