package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [text]",
	Short: "Export the filtered result set as CSV",
	Long: `Writes the records matching the search filters as CSV, one row per
record, with the same columns in every export. Accepts the same filter
flags as 'fathom search'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVar(&searchSpaces, "space", nil,
		"filter by space ID ('personal' for the personal space)")
	exportCmd.Flags().StringSliceVar(&searchApps, "app", nil, "filter by application ID")
	exportCmd.Flags().StringSliceVar(&searchSheets, "sheet", nil, "filter by sheet ID")
	exportCmd.Flags().StringSliceVar(&searchTypes, "type", nil, "filter by object type")
	exportCmd.Flags().StringVar(&searchVisibility, "visibility", "",
		"sheet visibility: published, unpublished or approved")
	exportCmd.Flags().BoolVar(&searchFavorites, "favorites", false, "only favourited records")
	exportCmd.Flags().StringVar(&searchSort, "sort", "", "sort column")
	exportCmd.Flags().BoolVar(&searchDesc, "desc", false, "sort descending")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	opts, err := buildQueryOptions(args)
	if err != nil {
		return err
	}
	// Exports cover the whole result set, not one page.
	opts.Page.Offset = 0
	opts.Page.Limit = 0

	out := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := exporter.Export(cmd.Context(), opts, out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOut != "" {
		cmd.Printf("Exported to %s\n", exportOut)
	}
	return nil
}
