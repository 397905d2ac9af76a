package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
	"NewsQuiz/internal/state"
)

// AnswersKey is the document name of the answer/score state inside the namespace.
const AnswersKey = "answers"

// ScoreboardState is the persisted answer/score document.
type ScoreboardState struct {
	Answers map[string]domain.Answer `json:"answers"`
	Score   domain.ScoreState        `json:"score"`
}

func defaultScoreboardState() ScoreboardState {
	return ScoreboardState{Answers: map[string]domain.Answer{}}
}

// validateScoreboardState rejects documents that break the scoring rules:
// negative values, or an answer filed under another article's id.
func validateScoreboardState(st ScoreboardState) error {
	if err := st.Score.Validate(); err != nil {
		return err
	}
	for id, a := range st.Answers {
		if err := a.Validate(); err != nil {
			return err
		}
		if a.ArticleID != id {
			return fmt.Errorf("answer for %q stored under %q", a.ArticleID, id)
		}
	}
	return nil
}

// Scoreboard owns every Answer and the running ScoreState.
type Scoreboard struct {
	store *state.Store[ScoreboardState]
	now   func() time.Time
}

// NewScoreboard builds the store under namespace+AnswersKey. Call Load before use.
func NewScoreboard(kv ports.KeyValueStore, namespace string, log *slog.Logger) *Scoreboard {
	return &Scoreboard{
		store: state.New(kv, namespace+AnswersKey, defaultScoreboardState, log,
			state.WithValidator(validateScoreboardState)),
		now:   time.Now,
	}
}

// WithClock replaces the time source used for AnsweredAt.
func (b *Scoreboard) WithClock(now func() time.Time) *Scoreboard {
	b.now = now
	return b
}

// Load restores the persisted document. A read failure is returned and
// every later write is refused until the document could be read.
func (b *Scoreboard) Load(ctx context.Context) (ScoreboardState, error) {
	st, _, err := b.store.Load(ctx)
	if err != nil {
		return st, fmt.Errorf("load answers: %w", err)
	}
	if st.Answers == nil {
		st.Answers = map[string]domain.Answer{}
	}
	return st, nil
}

// RecordAnswer stores the first verdict for articleID and updates the score.
// Later calls for the same id are no-ops and report recorded=false. A
// non-nil error with recorded=true is a persistence failure and the answer
// is still kept in memory; with recorded=false nothing was recorded.
func (b *Scoreboard) RecordAnswer(ctx context.Context, articleID string, wasCorrect bool) (domain.Answer, bool, error) {
	var recorded domain.Answer
	var changed bool

	err := b.store.Update(ctx, func(cur ScoreboardState) (ScoreboardState, bool) {
		if _, exists := cur.Answers[articleID]; exists {
			return cur, false
		}

		recorded = domain.Answer{
			ArticleID:  articleID,
			WasCorrect: wasCorrect,
			AnsweredAt: b.now().UTC(),
		}
		answers := maps.Clone(cur.Answers)
		if answers == nil {
			answers = map[string]domain.Answer{}
		}
		answers[articleID] = recorded

		changed = true
		return ScoreboardState{Answers: answers, Score: cur.Score.Apply(wasCorrect)}, true
	})

	if !changed {
		if err != nil {
			return domain.Answer{}, false, err
		}
		existing, _ := b.Answer(articleID)
		return existing, false, nil
	}
	return recorded, true, err
}

// ResetScore zeroes score and streak, keeping every answer.
func (b *Scoreboard) ResetScore(ctx context.Context) error {
	return b.store.Update(ctx, func(cur ScoreboardState) (ScoreboardState, bool) {
		if cur.Score == (domain.ScoreState{}) {
			return cur, false
		}
		return ScoreboardState{Answers: cur.Answers, Score: domain.ScoreState{}}, true
	})
}

// ResetAll deletes every answer and zeroes the score.
func (b *Scoreboard) ResetAll(ctx context.Context) error {
	return b.store.Set(ctx, defaultScoreboardState())
}

// Answer returns the verdict for articleID, if any.
func (b *Scoreboard) Answer(articleID string) (domain.Answer, bool) {
	a, ok := b.store.Get().Answers[articleID]
	return a, ok
}

// Answers returns a copy of all verdicts keyed by article id.
func (b *Scoreboard) Answers() map[string]domain.Answer {
	answers := maps.Clone(b.store.Get().Answers)
	if answers == nil {
		answers = map[string]domain.Answer{}
	}
	return answers
}

// Score returns the current score and streak.
func (b *Scoreboard) Score() domain.ScoreState {
	return b.store.Get().Score
}

// Stats counts recorded answers by outcome.
func (b *Scoreboard) Stats() domain.Stats {
	var stats domain.Stats
	for _, a := range b.store.Get().Answers {
		stats.Answered++
		if a.WasCorrect {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
	}
	return stats
}

// Subscribe observes committed changes to the document.
func (b *Scoreboard) Subscribe(fn func(prev, next ScoreboardState)) func() {
	return b.store.Subscribe(fn)
}
