package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "number of checks to list")
	rootCmd.AddCommand(historyCmd)
}

var (
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded status checks",
	Long:  `List the latest status checks recorded to history_path, newest first.`,
	Args:  cobra.NoArgs,
	Run:   history,
}

func history(_ *cobra.Command, _ []string) {
	if historyLimit < 1 {
		log.Error().Msg("--limit needs to be at least 1")
		os.Exit(1)
	}

	db, err := openHistory(conf)
	if err != nil {
		log.Error().Err(err).Str("path", conf.HistoryPath).Msg("failed to open history")
		os.Exit(1)
	}
	if db == nil {
		log.Error().Msg("history_path is not set in the config file")
		os.Exit(1)
	}
	defer db.Close()

	checks, err := db.Latest(context.Background(), historyLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read history")
		os.Exit(1)
	}

	for _, c := range checks {
		fmt.Printf("%s\t%s\t%s\n", c.CheckedAt.Local().Format(time.RFC3339), c.Slug, c.Status)
	}
}
