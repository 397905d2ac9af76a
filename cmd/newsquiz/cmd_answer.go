package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"NewsQuiz/internal/app"
	"NewsQuiz/internal/infrastructure/i18n"
	"NewsQuiz/internal/usecase"
)

func newAnswerCmd(flags *rootFlags) *cobra.Command {
	var (
		fake    bool
		genuine bool
		pages   int
	)

	cmd := &cobra.Command{
		Use:   "answer <article-id>",
		Short: "Mark one article as fake or real",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			articleID := args[0]

			return flags.withApp(cmd, nil, func(a *app.Application) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()
				tr := a.Translator

				if _, answered := a.Scoreboard.Answer(articleID); answered {
					fmt.Fprintln(out, tr.Sprintf(i18n.KeyAlreadyAnswer, articleID))
					return nil
				}

				idx, err := locate(ctx, a.Session, articleID, pages)
				if err != nil {
					fmt.Fprintln(out, tr.Sprintf(i18n.KeyLoadFailed, err))
					return err
				}
				if idx < 0 {
					fmt.Fprintln(out, tr.Sprintf(i18n.KeyNotFound, articleID))
					return fmt.Errorf("article %s not found", articleID)
				}

				if !a.Session.SelectArticle(idx) {
					return fmt.Errorf("article %s cannot be selected", articleID)
				}
				res, ok := a.Session.SubmitAnswer(ctx, fake)
				if !ok {
					fmt.Fprintln(out, tr.Sprintf(i18n.KeyAlreadyAnswer, articleID))
					return nil
				}
				a.Session.CompleteFeedback()

				printVerdict(out, tr, res)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fake, "fake", false, "the article is fabricated")
	cmd.Flags().BoolVar(&genuine, "real", false, "the article is genuine")
	cmd.Flags().IntVar(&pages, "pages", 5, "maximum number of pages to search")
	cmd.MarkFlagsMutuallyExclusive("fake", "real")
	cmd.MarkFlagsOneRequired("fake", "real")
	return cmd
}

// locate loads pages until articleID appears in the feed or maxPages were read.
func locate(ctx context.Context, session *usecase.FeedSession, articleID string, maxPages int) (int, error) {
	if err := session.Refresh(ctx); err != nil {
		return -1, err
	}
	for page := 1; ; page++ {
		if idx := session.IndexOf(articleID); idx >= 0 {
			return idx, nil
		}
		if page >= maxPages {
			return -1, nil
		}
		more, err := session.LoadMore(ctx)
		if err != nil {
			return -1, err
		}
		if !more {
			return -1, nil
		}
	}
}
