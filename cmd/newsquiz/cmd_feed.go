package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsQuiz/internal/app"
	"NewsQuiz/internal/config"
	"NewsQuiz/internal/infrastructure/i18n"
	"NewsQuiz/internal/usecase"
)

func newFeedCmd(flags *rootFlags) *cobra.Command {
	var (
		tab      string
		pages    int
		category string
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List articles with their answer marks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := usecase.ParseTab(tab)
			if err != nil {
				return err
			}
			configure := func(cfg *config.Config) {
				if category != "" {
					cfg.Content.Category = category
				}
			}

			return flags.withApp(cmd, configure, func(a *app.Application) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				if err := a.Session.Refresh(ctx); err != nil {
					fmt.Fprintln(out, a.Translator.Sprintf(i18n.KeyLoadFailed, err))
					return err
				}
				for i := 1; i < pages; i++ {
					more, err := a.Session.LoadMore(ctx)
					if err != nil {
						fmt.Fprintln(out, a.Translator.Sprintf(i18n.KeyLoadFailed, err))
						break
					}
					if !more {
						break
					}
				}

				if err := a.Session.SetTab(selected); err != nil {
					return err
				}
				printFeed(out, a.Translator, a.Session.View())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&tab, "tab", string(usecase.TabLatest), "tab to show: latest or to-read")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().StringVar(&category, "category", "", "only request articles of this category")
	return cmd
}
