package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"NewsQuiz/internal/app"
	"NewsQuiz/internal/infrastructure/i18n"
	"NewsQuiz/internal/usecase"
)

func newPlayCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Answer articles one by one from stdin",
		Long: `Reads one command per line:
  n / p   next / previous article
  f / r   mark the current article as fake / real
  m       load more articles
  t       toggle between the latest and to-read tabs
  q       quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(cmd, nil, func(a *app.Application) error {
				return playLoop(cmd, a)
			})
		},
	}
}

func playLoop(cmd *cobra.Command, a *app.Application) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	session := a.Session
	tr := a.Translator

	if err := session.Refresh(ctx); err != nil {
		fmt.Fprintln(out, tr.Sprintf(i18n.KeyLoadFailed, err))
		return err
	}
	if session.View().Fallback {
		fmt.Fprintln(out, tr.Sprintf(i18n.KeyFeedFallback))
	}
	fmt.Fprintln(out, tr.Sprintf(i18n.KeyPlayHelp))

	pos := 0
	show := func() {
		items := session.Items()
		if len(items) == 0 {
			fmt.Fprintln(out, tr.Sprintf(i18n.KeyFeedEmpty))
			return
		}
		pos = max(0, min(pos, len(items)-1))
		session.SelectArticle(pos)
		printArticle(out, tr, pos, len(items), items[pos])
	}
	show()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "q":
			return nil
		case "n":
			pos++
			show()
		case "p":
			pos--
			show()
		case "f", "r":
			res, ok := session.SubmitAnswer(ctx, line == "f")
			if !ok {
				if view := session.View(); view.ExpandedIndex >= 0 {
					fmt.Fprintln(out, tr.Sprintf(i18n.KeyAlreadyAnswer, view.Items[view.ExpandedIndex].Article.ID))
				}
				continue
			}
			printVerdict(out, tr, res)
			session.CompleteFeedback()
		case "m":
			if _, err := session.LoadMore(ctx); err != nil {
				fmt.Fprintln(out, tr.Sprintf(i18n.KeyLoadFailed, err))
			}
			show()
		case "t":
			next := usecase.TabToRead
			if session.View().ActiveTab == usecase.TabToRead {
				next = usecase.TabLatest
			}
			if err := session.SetTab(next); err != nil {
				return err
			}
			pos = 0
			show()
		case "":
		default:
			fmt.Fprintln(out, tr.Sprintf(i18n.KeyPlayHelp))
		}
	}
	return scanner.Err()
}
