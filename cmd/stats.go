package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/client"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/profiler"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model statistics of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL)

		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		spamTokens, err := c.TopTokens(learning.Spam.String(), statsTop)
		if err != nil {
			return fmt.Errorf("failed to fetch spam tokens: %w", err)
		}
		hamTokens, err := c.TopTokens(learning.Ham.String(), statsTop)
		if err != nil {
			return fmt.Errorf("failed to fetch ham tokens: %w", err)
		}

		learning.PrintStats(os.Stdout, stats.Model, spamTokens, hamTokens)

		fmt.Printf("🗄️  Result cache: %s (%d hits, %d misses, %d errors)\n\n",
			stats.Cache.Backend, stats.Cache.Hits, stats.Cache.Misses, stats.Cache.Errors)

		profiler.PrintReport(os.Stdout, stats.Operations)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 10, "Number of top tokens per label")
}
