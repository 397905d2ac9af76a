package main

import (
	"github.com/spf13/cobra"

	"NewsQuiz/internal/app"
	"NewsQuiz/internal/config"
	"NewsQuiz/internal/logging"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	storage    string
	dbPath     string
	apiURL     string
	lang       string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "newsquiz",
		Short: "Spot the fabricated headline",
		Long: `newsquiz serves a feed of short news articles, some of them fabricated.
Mark each one as fake or real; correct verdicts score points and build a streak.

Answers, score and language are stored locally (SQLite by default, or Redis).`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to the YAML config (default $NEWSQUIZ_CONFIG)")
	pf.StringVar(&flags.storage, "storage", "", "storage backend: sqlite, redis or memory")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path")
	pf.StringVar(&flags.apiURL, "api", "", "content API base URL")
	pf.StringVar(&flags.lang, "lang", "", "language for this run only (en, ja, es, fr, de)")

	root.AddCommand(
		newFeedCmd(flags),
		newAnswerCmd(flags),
		newPlayCmd(flags),
		newScoreCmd(flags),
		newResetCmd(flags),
		newLangCmd(flags),
		newWatchCmd(flags),
	)
	return root
}

func (f *rootFlags) loadConfig() config.Config {
	var cfg config.Config
	if f.configPath != "" {
		cfg = config.LoadFile(f.configPath)
	} else {
		cfg = config.Load()
	}

	if f.storage != "" {
		cfg.Storage.Backend = f.storage
	}
	if f.dbPath != "" {
		cfg.Storage.SQLitePath = f.dbPath
	}
	if f.apiURL != "" {
		cfg.Content.BaseURL = f.apiURL
	}
	return cfg
}

// withApp builds the application for one command run and closes it afterwards.
func (f *rootFlags) withApp(cmd *cobra.Command, configure func(*config.Config), fn func(*app.Application) error) error {
	cfg := f.loadConfig()
	if configure != nil {
		configure(&cfg)
	}

	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	application, err := app.New(cmd.Context(), cfg, logger, app.Options{Language: f.lang})
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	return fn(application)
}
