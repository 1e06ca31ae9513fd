package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/circleous/cistatus/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cistatus",
	Short: "cistatus shows the CI build status of a git repository",
	Long: `Shows the continuous integration build status of the git repository containing a
file and opens its build page. Currently supports Travis CI and GitHub commit statuses.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

var (
	confPath string
	silent   bool
	verbose  bool

	conf *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "config", "c", "cistatus.toml", "config file, .toml or .yaml")
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, "silent, only error or panic output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "more verbose for debug output")
	cobra.OnInitialize(func() {
		// init logger
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		if silent && verbose {
			log.Error().Msg("choose only one of silent or verbose output")
			os.Exit(1)
		}

		zerolog.SetGlobalLevel(zerolog.InfoLevel)

		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		var err error
		if _, statErr := os.Stat(confPath); os.IsNotExist(statErr) {
			log.Debug().Str("config", confPath).Msg("config file not exists, using defaults")
			conf = config.Default()
		} else if conf, err = config.ParseConfig(confPath); err != nil {
			log.Error().Err(err).Str("config", confPath).Msg("failed to parse config file")
			os.Exit(1)
		}

		if conf.DebugEnable && !silent {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		if silent {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		}
	})
}

// Execute root cobra executor
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("")
		os.Exit(1)
	}
}
