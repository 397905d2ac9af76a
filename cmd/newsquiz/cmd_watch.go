package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsQuiz/internal/app"
	"NewsQuiz/internal/infrastructure/i18n"
	"NewsQuiz/internal/usecase"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh the feed periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.withApp(cmd, nil, func(a *app.Application) error {
				out := cmd.OutOrStdout()
				tr := a.Translator

				unsubscribe := a.Session.Subscribe(func(ev usecase.Event) {
					switch ev.Kind {
					case usecase.EventFeedReset:
						if ev.Count == 0 {
							return
						}
						view := a.Session.View()
						if view.Fallback {
							fmt.Fprintln(out, tr.Sprintf(i18n.KeyFeedFallback))
						}
						fmt.Fprintln(out, tr.Sprintf(i18n.KeyFeedHeader, ev.Count, string(view.ActiveTab)))
						a.Logger().Info("feed refreshed", "count", ev.Count, "fallback", view.Fallback, "has_more", view.HasMore)
					case usecase.EventLoadFailed:
						fmt.Fprintln(out, tr.Sprintf(i18n.KeyLoadFailed, ev.Err))
					}
				})
				defer unsubscribe()

				return a.Watch(cmd.Context())
			})
		},
	}
}
