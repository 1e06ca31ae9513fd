package cmd

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/cistatus/internal/statusbar"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check the build status",
	Long: `Check the build status of the repository containing path, or the working
directory. The status bar key is cleared when no definitive status is available.`,
	Args: cobra.MaximumNArgs(1),
	Run:  check,
}

func check(_ *cobra.Command, args []string) {
	ctx := context.Background()

	dir, err := targetDir(args)
	if err != nil {
		log.Error().Err(err).Msg("invalid path")
		os.Exit(1)
	}

	r, err := newResolver(ctx, conf)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize")
		os.Exit(1)
	}

	rep := r.Check(ctx, dir)

	ev := log.Debug().Str("dir", dir).Str("kind", rep.Kind.String())
	if rep.Err != nil {
		ev = ev.Err(rep.Err)
	}
	ev.Str("slug", rep.Slug.String()).Msg("checked")

	if err := statusbar.Apply(newBar(conf), statusbar.Key, rep); err != nil {
		log.Error().Err(err).Msg("failed to update status bar")
		os.Exit(1)
	}

	db, err := openHistory(conf)
	if err != nil {
		log.Error().Err(err).Str("path", conf.HistoryPath).Msg("failed to open history")
		return
	}
	if db == nil {
		return
	}
	defer db.Close()

	if rep.Slug == "" {
		return
	}

	if err := db.Record(ctx, rep.Slug, rep.Status, time.Now()); err != nil {
		log.Error().Err(err).Msg("failed to record check")
	}
}
