package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favourited records",
	Long: `Favourites pin records by application ID and structural path, so they
survive cache clears and reloads.`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favourites",
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <app-id> <path>",
	Short: "Add a favourite",
	Args:  cobra.ExactArgs(2),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <app-id> <path>",
	Short: "Remove a favourite",
	Args:  cobra.ExactArgs(2),
	RunE:  runFavoritesRemove,
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func runFavoritesList(cmd *cobra.Command, _ []string) error {
	if _, err := requirePartition(); err != nil {
		return err
	}

	favs, err := favorites.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing favourites: %w", err)
	}

	if len(favs) == 0 {
		cmd.Println("No favourites yet. Add one with 'fathom favorites add <app-id> <path>'.")
		return nil
	}

	for _, f := range favs {
		cmd.Printf("  %s  %s\n", f.AppID, f.Path)
	}
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	if _, err := requirePartition(); err != nil {
		return err
	}

	fav := domain.Favorite{AppID: args[0], Path: args[1]}
	if err := favorites.Add(cmd.Context(), fav); err != nil {
		return fmt.Errorf("adding favourite: %w", err)
	}
	cmd.Printf("Favourited %s %s\n", fav.AppID, fav.Path)
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	if _, err := requirePartition(); err != nil {
		return err
	}

	fav := domain.Favorite{AppID: args[0], Path: args[1]}
	if err := favorites.Remove(cmd.Context(), fav); err != nil {
		return fmt.Errorf("removing favourite: %w", err)
	}
	cmd.Printf("Removed favourite %s %s\n", fav.AppID, fav.Path)
	return nil
}
