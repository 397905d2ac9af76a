package main

import (
	"fmt"
	"io"
	"strings"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/infrastructure/i18n"
	"NewsQuiz/internal/usecase"
)

func mark(tr *i18n.Translator, item domain.AnsweredArticle) string {
	switch {
	case !item.Answered():
		return tr.Sprintf(i18n.KeyMarkUnanswered)
	case item.Answer.WasCorrect:
		return tr.Sprintf(i18n.KeyMarkCorrect)
	default:
		return tr.Sprintf(i18n.KeyMarkIncorrect)
	}
}

func printFeed(w io.Writer, tr *i18n.Translator, view usecase.FeedView) {
	if view.Fallback {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyFeedFallback))
	}
	if len(view.Items) == 0 {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyFeedEmpty))
	} else {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyFeedHeader, len(view.Items), string(view.ActiveTab)))
		for i, item := range view.Items {
			fmt.Fprintf(w, "%3d. [%s] %s (%s)\n", i+1, mark(tr, item), item.Article.Headline, item.Article.ID)
		}
	}
	printScore(w, tr, view.Score)
	if view.HasMore {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyFeedMore))
	}
}

func printArticle(w io.Writer, tr *i18n.Translator, pos, total int, item domain.AnsweredArticle) {
	fmt.Fprintf(w, "\n[%d/%d] [%s] %s\n", pos+1, total, mark(tr, item), item.Article.Headline)
	if item.Article.Category != "" {
		fmt.Fprintf(w, "%s · %s\n", item.Article.Category, item.Article.ID)
	}
	if body := strings.TrimSpace(item.Article.Body); body != "" {
		fmt.Fprintf(w, "\n%s\n", body)
	}
}

func printVerdict(w io.Writer, tr *i18n.Translator, res usecase.SubmitResult) {
	if res.Correct {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyVerdictCorrect, domain.PointsPerCorrectAnswer))
	} else {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyVerdictWrong))
	}
	if res.Article.IsFabricated && res.Article.FabricationReason != "" {
		fmt.Fprintln(w, tr.Sprintf(i18n.KeyVerdictReason, res.Article.FabricationReason))
	}
	printScore(w, tr, res.Score)
}

func printScore(w io.Writer, tr *i18n.Translator, score domain.ScoreState) {
	fmt.Fprintln(w, tr.Sprintf(i18n.KeyScoreLine, score.Score, score.Streak))
}
