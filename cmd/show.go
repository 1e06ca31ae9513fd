package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/cistatus/internal/browser"
	"github.com/circleous/cistatus/internal/status"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Open the build page in a browser",
	Long: `Open the CI build page of the repository containing path, or the working
directory. Nothing is opened unless the provider knows the repository.`,
	Args: cobra.MaximumNArgs(1),
	Run:  show,
}

func show(_ *cobra.Command, args []string) {
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

	page := r.ShowBuild(ctx, dir, browser.New(conf))

	switch {
	case page.Opened:
		log.Debug().Str("url", page.URL).Msg("opened build page")
	case page.Kind == status.KindRepositoryUnknown:
		fmt.Printf("%s is not known to %s\n", page.Slug, r.Provider())
	case page.Slug == "":
		log.Debug().Err(page.Err).Str("dir", dir).Str("kind", page.Kind.String()).
			Msg("no repository")
		fmt.Printf("%s is not in a repository with a %s remote\n", dir, conf.DefaultRemote)
	default:
		log.Error().Err(page.Err).Str("slug", page.Slug.String()).
			Str("kind", page.Kind.String()).Msg("failed to show build")
	}
}
