package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/cistatus/internal/lifecycle"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch dir...",
	Short: "Keep the status bar updated while files change",
	Long: `Watch directories and re-check the build status whenever a file in them is
created, written, removed or has its mode changed.`,
	Args: cobra.MinimumNArgs(1),
	Run:  watch,
}

func watch(_ *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r, err := newResolver(ctx, conf)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize")
		os.Exit(1)
	}

	opt := lifecycle.Options{
		MaxWorker: conf.MaxWorker,
		Debounce:  time.Duration(conf.Debounce),
	}

	db, err := openHistory(conf)
	if err != nil {
		log.Error().Err(err).Str("path", conf.HistoryPath).Msg("failed to open history")
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		opt.Recorder = db
	}

	u := lifecycle.NewUpdater(ctx, r, newBar(conf), opt)

	w, err := lifecycle.NewWatcher(u, args...)
	if err != nil {
		log.Error().Err(err).Msg("failed to watch")
		os.Exit(1)
	}

	// show something before the first event
	for _, dir := range args {
		u.FileActivated(dir)
	}

	if err := w.Run(ctx); err != nil {
		log.Error().Err(err).Msg("watcher stopped")
	}
	u.Wait()

	stats := u.Stats()
	log.Info().Uint("checks", stats.Checks).Uint("passing", stats.Passing).
		Uint("failing", stats.Failing).Uint("cleared", stats.Cleared).
		Uint("collapsed", stats.Collapsed).Msg("stopped watching")
}
