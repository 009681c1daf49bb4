package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/cache"
	"github.com/mvp-joe/cxxscope/internal/logging"
)

var pruneDays int

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the castxml dump cache",
	Long: `Manage the SQLite cache of castxml dumps.

Dumps are keyed by header path, header content and castxml settings, so an
edited header or a changed flag is regenerated automatically.

Available commands:
  info        - Show cache location and totals
  prune       - Remove dumps not used recently
  invalidate  - Remove the dumps of one header
  clear       - Remove every dump`,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and totals",
	RunE:  runCacheInfo,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove dumps not used recently",
	Long: `Remove dumps not accessed within --days days. The default comes from
cache.max_age_days in the configuration.`,
	RunE: runCachePrune,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <header>...",
	Short: "Remove the dumps of the given headers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheInvalidate,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every dump",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cachePruneCmd.Flags().IntVar(&pruneDays, "days", 0, "maximum idle age in days (default from config)")
}

// withCache opens the cache regardless of cache.enabled and runs fn.
func withCache(cmd *cobra.Command, fn func(c *cache.Cache) error) error {
	c, err := cache.Open(cfg.Cache.Location, cache.WithLogger(logging.FromContext(cmd.Context())))
	if err != nil {
		return fmt.Errorf("failed to open dump cache: %w", err)
	}
	defer c.Close()
	return fn(c)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(c *cache.Cache) error {
		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Location: %s\n", filepath.Join(c.Root(), cache.DatabaseName))
		fmt.Fprintf(out, "Enabled:  %t\n", cfg.Cache.Enabled)
		fmt.Fprintf(out, "Dumps:    %s\n", formatNumber(stats.Entries))
		fmt.Fprintf(out, "Headers:  %s\n", formatNumber(stats.Headers))
		fmt.Fprintf(out, "Size:     %s\n", formatBytes(stats.Bytes))
		return nil
	})
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	days := pruneDays
	if days <= 0 {
		days = cfg.Cache.MaxAgeDays
	}
	return withCache(cmd, func(c *cache.Cache) error {
		n, err := c.PruneOlderThan(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %s dumps idle for more than %d days\n", formatNumber(int(n)), days)
		return nil
	})
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(c *cache.Cache) error {
		var total int64
		for _, header := range args {
			if !filepath.IsAbs(header) {
				header = filepath.Join(rootDir, header)
			}
			n, err := c.Invalidate(cmd.Context(), header)
			if err != nil {
				return err
			}
			total += n
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s dumps\n", formatNumber(int(total)))
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(c *cache.Cache) error {
		n, err := c.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s dumps\n", formatNumber(int(n)))
		return nil
	})
}
