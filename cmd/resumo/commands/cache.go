package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// serverAddr is the address of a running server.
	serverAddr string

	// clearPattern limits clear to matching entries.
	clearPattern string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear a running server's cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the cache",
	Long: `Clear every cache entry, or with --pattern only the entries whose key
or text contains the pattern.`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(
		&serverAddr, "server", "",
		"Server address (default from server.addr)",
	)
	cacheClearCmd.Flags().StringVar(
		&clearPattern, "pattern", "",
		"Only remove entries containing this text",
	)

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// serverClient returns a client for --server or the configured address.
func serverClient() (*Client, error) {
	if serverAddr != "" {
		return NewClient(serverAddr), nil
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return nil, err
	}

	return NewClient(cfg.Server.Addr), nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	client, err := serverClient()
	if err != nil {
		return err
	}

	stats, err := client.CacheStats(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat == "json" {
		return outputJSON(w, stats)
	}

	fmt.Fprintf(w, "Entries: %d/%d\n", stats.Size, stats.MaxSize)
	fmt.Fprintf(w, "TTL: %s\n", stats.TTL)
	for _, key := range stats.Keys {
		fmt.Fprintf(w, "  %s\n", key)
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	client, err := serverClient()
	if err != nil {
		return err
	}

	resp, err := client.ClearCache(cmd.Context(), clearPattern)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat == "json" {
		return outputJSON(w, resp)
	}

	if resp.Pattern != "" {
		fmt.Fprintf(w, "Removed %d entries matching %q\n", resp.Removed,
			resp.Pattern)
	} else {
		fmt.Fprintf(w, "Removed %d entries\n", resp.Removed)
	}

	return nil
}
