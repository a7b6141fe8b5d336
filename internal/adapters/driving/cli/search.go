package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

var (
	searchSpaces     []string
	searchApps       []string
	searchSheets     []string
	searchTypes      []string
	searchVisibility string
	searchFavorites  bool
	searchSort       string
	searchDesc       bool
	searchLimit      int
	searchOffset     int
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search the local catalog",
	Long: `Queries the locally cached dimensions and measures. Without text, all
records matching the filters are listed in load order. With text,
results are ranked: title matches first, then label matches, then
matches anywhere in the definition.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchSpaces, "space", nil,
		"filter by space ID ('personal' for the personal space)")
	searchCmd.Flags().StringSliceVar(&searchApps, "app", nil, "filter by application ID")
	searchCmd.Flags().StringSliceVar(&searchSheets, "sheet", nil, "filter by sheet ID")
	searchCmd.Flags().StringSliceVar(&searchTypes, "type", nil,
		"filter by object type (Master Dimension, Master Measure, Sheet Dimension, Sheet Measure)")
	searchCmd.Flags().StringVar(&searchVisibility, "visibility", "",
		"sheet visibility: published, unpublished or approved")
	searchCmd.Flags().BoolVar(&searchFavorites, "favorites", false, "only favourited records")
	searchCmd.Flags().StringVar(&searchSort, "sort", "",
		"sort column: title, definition, app, sheet, type or name (default: relevance)")
	searchCmd.Flags().BoolVar(&searchDesc, "desc", false, "sort descending")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 25, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts, err := buildQueryOptions(args)
	if err != nil {
		return err
	}

	result, err := queryService.Query(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	return outputSearchTable(cmd, result)
}

// buildQueryOptions assembles query options from the search flags.
func buildQueryOptions(args []string) (domain.QueryOptions, error) {
	partition, err := requirePartition()
	if err != nil {
		return domain.QueryOptions{}, err
	}

	filter := domain.Filter{
		TenantUser:    partition,
		SpaceIDs:      normalizeSpaceIDs(searchSpaces),
		AppIDs:        searchApps,
		SheetIDs:      searchSheets,
		FavoritesOnly: searchFavorites,
	}
	if len(args) > 0 {
		filter.SearchText = args[0]
	}

	for _, t := range searchTypes {
		objectType := domain.ObjectType(t)
		if !objectType.Valid() {
			return domain.QueryOptions{}, fmt.Errorf(
				"unknown object type %q (valid: %s)", t, joinObjectTypes())
		}
		filter.ObjectTypes = append(filter.ObjectTypes, objectType)
	}

	switch v := domain.SheetVisibility(searchVisibility); v {
	case domain.VisibilityAny, domain.VisibilityPublished,
		domain.VisibilityUnpublished, domain.VisibilityApproved:
		filter.Visibility = v
	default:
		return domain.QueryOptions{}, fmt.Errorf(
			"unknown visibility %q (valid: published, unpublished, approved)", searchVisibility)
	}

	switch c := domain.SortColumn(searchSort); c {
	case domain.SortRelevance, domain.SortTitle, domain.SortDefinition,
		domain.SortApp, domain.SortSheet, domain.SortType, domain.SortName:
		// valid
	default:
		return domain.QueryOptions{}, fmt.Errorf(
			"unknown sort column %q (valid: title, definition, app, sheet, type, name)", searchSort)
	}

	return domain.QueryOptions{
		Filter: filter,
		Sort:   domain.Sort{Column: domain.SortColumn(searchSort), Descending: searchDesc},
		Page:   domain.Page{Offset: searchOffset, Limit: searchLimit},
	}, nil
}

func joinObjectTypes() string {
	types := domain.ObjectTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func outputSearchJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.QueryResult) error {
	if len(result.Records) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Showing %d of %d results:\n\n", len(result.Records), result.Total)
	for i := range result.Records {
		r := &result.Records[i]

		title := r.Title
		if title == "" {
			title = r.Definition
		}

		cmd.Printf("  [%d] %s  (%s)\n", i+1, title, r.ObjectType)
		if r.Definition != "" && r.Definition != title {
			cmd.Printf("      %s\n", r.Definition)
		}
		location := r.AppName
		if r.SheetName != "" {
			location += " / " + r.SheetName
		}
		cmd.Printf("      App: %s\n", location)
		if r.NameText != "" {
			cmd.Printf("      Fields: %s\n", r.NameText)
		}
		cmd.Println()
	}
	return nil
}
