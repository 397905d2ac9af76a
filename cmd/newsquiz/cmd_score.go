package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsQuiz/internal/app"
	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/infrastructure/i18n"
)

func newScoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Show score, streak and answer statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(cmd, nil, func(a *app.Application) error {
				out := cmd.OutOrStdout()
				printScore(out, a.Translator, a.Scoreboard.Score())

				stats := a.Scoreboard.Stats()
				fmt.Fprintln(out, a.Translator.Sprintf(i18n.KeyStatsLine,
					stats.Answered, stats.Correct, stats.Incorrect, stats.Accuracy()*100))
				return nil
			})
		},
	}
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the score, or with --all every stored answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(cmd, nil, func(a *app.Application) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				if all {
					if err := a.Scoreboard.ResetAll(ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, a.Translator.Sprintf(i18n.KeyResetAll))
					return nil
				}

				if err := a.Scoreboard.ResetScore(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, a.Translator.Sprintf(i18n.KeyResetScore))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also forget every answered article")
	return cmd
}

func newLangCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [code]",
		Short: "Print or change the persisted language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(cmd, nil, func(a *app.Application) error {
				if len(args) == 1 {
					if err := a.Settings.SetLanguage(cmd.Context(), domain.Language(args[0])); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.Translator.Sprintf(i18n.KeyLanguageLine, string(a.Settings.Language())))
				return nil
			})
		},
	}
}
