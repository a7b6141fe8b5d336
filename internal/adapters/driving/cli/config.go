package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage fathom configuration",
	Long: `View and edit the configuration stored in ~/.fathom/config.toml.

Common keys:
  tenant_url           tenant base URL
  user_id              user identifier at the tenant
  loader.workers       concurrent application loads (default 5)
  query.debounce_ms    live query debounce in milliseconds (default 200)
  loader.space_filter  persisted space selection`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. Integers and booleans are detected from
the value; comma-separated values become a list.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// shownKeys is the stable display order for 'config show'.
var shownKeys = []string{
	file.KeyTenantURL,
	file.KeyUserID,
	file.KeyWorkers,
	file.KeyDebounceMS,
	file.KeySpaceFilter,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	for _, key := range shownKeys {
		val, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("%-22s (unset)\n", key)
			continue
		}
		cmd.Printf("%-22s %v\n", key, val)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	val, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// parseConfigValue guesses the TOML type from the raw string.
func parseConfigValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return raw
}
