package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// filterFields maps CLI argument names to the store's field names.
var filterFields = map[string]string{
	"type":  "objectType",
	"app":   "appName",
	"sheet": "sheetName",
	"space": "spaceId",
}

var filtersCmd = &cobra.Command{
	Use:   "filters [type|app|sheet|space]",
	Short: "List the distinct filter values in the catalog",
	Long: `Lists the values available for search filters, drawn from the cached
records of the configured tenant. Without an argument, all four filter
dimensions are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilters,
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}

func runFilters(cmd *cobra.Command, args []string) error {
	partition, err := requirePartition()
	if err != nil {
		return err
	}

	names := []string{"type", "app", "sheet", "space"}
	if len(args) > 0 {
		if _, ok := filterFields[args[0]]; !ok {
			return fmt.Errorf("unknown filter %q (valid: type, app, sheet, space)", args[0])
		}
		names = []string{args[0]}
	}

	for _, name := range names {
		values, err := catalogStore.UniqueValues(cmd.Context(), partition, filterFields[name])
		if err != nil {
			return fmt.Errorf("listing %s values: %w", name, err)
		}

		cmd.Printf("%s:\n", name)
		if len(values) == 0 {
			cmd.Println("  (none)")
		}
		for _, v := range values {
			cmd.Printf("  %s\n", v)
		}
		cmd.Println()
	}
	return nil
}
