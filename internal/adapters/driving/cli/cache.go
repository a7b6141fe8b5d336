package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local catalog cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached tenant/user partitions",
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [partition]",
	Short: "Clear one partition's cache",
	Long: `Removes a partition's cached records and application metadata.
Favourites are kept. Without an argument, clears the configured
tenant's partition.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	infos, err := cacheAdmin.ListPartitions(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing partitions: %w", err)
	}

	if len(infos) == 0 {
		cmd.Println("Nothing cached yet. Run 'fathom load' first.")
		return nil
	}

	for _, info := range infos {
		label := info.TenantUser
		if tenantURL, userID := domain.SplitPartitionKey(info.TenantUser); tenantURL != "" {
			label = fmt.Sprintf("%s (user %s)", tenantURL, userID)
		}

		cmd.Printf("%s\n", label)
		cmd.Printf("  %d apps, %d records", info.AppCount, info.RecordCount)
		if !info.LastSync.IsZero() {
			cmd.Printf(", last sync %s", info.LastSync.Local().Format("2006-01-02 15:04"))
		}
		cmd.Println()
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	var partition string
	if len(args) > 0 {
		partition = args[0]
	} else {
		var err error
		partition, err = requirePartition()
		if err != nil {
			return err
		}
	}

	if err := cacheAdmin.ClearPartition(cmd.Context(), partition); err != nil {
		return fmt.Errorf("clearing partition: %w", err)
	}

	cmd.Printf("Cleared cache for %s\n", partition)
	return nil
}
