package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/infrastructure/storage"
)

const testNamespace = "test:"

var fixedNow = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

func newScoreboard(t *testing.T, kv *storage.MemoryStore) *Scoreboard {
	t.Helper()
	b := NewScoreboard(kv, testNamespace, nil).WithClock(func() time.Time { return fixedNow })
	_, err := b.Load(context.Background())
	require.NoError(t, err)
	return b
}

func TestRecordAnswerOnlyFirstCallCounts(t *testing.T) {
	ctx := context.Background()
	b := newScoreboard(t, storage.NewMemoryStore())

	answer, recorded, err := b.RecordAnswer(ctx, "a1", true)
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, domain.Answer{ArticleID: "a1", WasCorrect: true, AnsweredAt: fixedNow}, answer)

	for _, correct := range []bool{true, false, true} {
		again, recorded, err := b.RecordAnswer(ctx, "a1", correct)
		require.NoError(t, err)
		assert.False(t, recorded)
		assert.Equal(t, answer, again, "existing answer is returned unchanged")
	}

	assert.Equal(t, domain.ScoreState{Score: 100, Streak: 1}, b.Score())
	assert.Len(t, b.Answers(), 1)
}

func TestStreakFollowsSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	b := newScoreboard(t, storage.NewMemoryStore())

	sequence := []bool{true, true, false, true, true, true}
	for i, correct := range sequence {
		_, recorded, err := b.RecordAnswer(ctx, string(rune('a'+i)), correct)
		require.NoError(t, err)
		require.True(t, recorded)
	}

	assert.Equal(t, domain.ScoreState{Score: 500, Streak: 3}, b.Score())

	_, _, err := b.RecordAnswer(ctx, "z", false)
	require.NoError(t, err)
	assert.Equal(t, domain.ScoreState{Score: 500, Streak: 0}, b.Score())

	stats := b.Stats()
	assert.Equal(t, domain.Stats{Answered: 7, Correct: 5, Incorrect: 2}, stats)
}

func TestScoreboardPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	b := newScoreboard(t, kv)

	_, _, err := b.RecordAnswer(ctx, "a1", true)
	require.NoError(t, err)
	_, _, err = b.RecordAnswer(ctx, "a2", false)
	require.NoError(t, err)

	raw, found, err := kv.Get(ctx, testNamespace+AnswersKey)
	require.NoError(t, err)
	require.True(t, found)

	var doc ScoreboardState
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Len(t, doc.Answers, 2)
	assert.Equal(t, domain.ScoreState{Score: 100, Streak: 0}, doc.Score)

	restored := newScoreboard(t, kv)
	assert.Equal(t, b.Answers(), restored.Answers())
	assert.Equal(t, b.Score(), restored.Score())

	// A restored scoreboard still refuses a second answer.
	_, recorded, err := restored.RecordAnswer(ctx, "a1", false)
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, domain.ScoreState{Score: 100, Streak: 0}, restored.Score())
}

func TestScoreboardCorruptDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, testNamespace+AnswersKey, "{not json"))

	b := newScoreboard(t, kv)
	assert.Empty(t, b.Answers())
	assert.Equal(t, domain.ScoreState{}, b.Score())

	_, recorded, err := b.RecordAnswer(ctx, "a1", true)
	require.NoError(t, err)
	assert.True(t, recorded)
}

func TestResetScoreKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	b := newScoreboard(t, storage.NewMemoryStore())
	_, _, _ = b.RecordAnswer(ctx, "a1", true)
	_, _, _ = b.RecordAnswer(ctx, "a2", true)

	require.NoError(t, b.ResetScore(ctx))
	assert.Equal(t, domain.ScoreState{}, b.Score())
	assert.Len(t, b.Answers(), 2)

	_, recorded, _ := b.RecordAnswer(ctx, "a1", true)
	assert.False(t, recorded, "reset score must not reopen answered articles")
}

func TestResetAllClearsEverythingDurably(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	b := newScoreboard(t, kv)
	_, _, _ = b.RecordAnswer(ctx, "a1", true)
	_, _, _ = b.RecordAnswer(ctx, "a2", false)

	require.NoError(t, b.ResetAll(ctx))
	assert.Empty(t, b.Answers())
	assert.Equal(t, domain.ScoreState{}, b.Score())

	restored := newScoreboard(t, kv)
	assert.Empty(t, restored.Answers())
	assert.Equal(t, domain.ScoreState{}, restored.Score())

	_, recorded, err := restored.RecordAnswer(ctx, "a1", false)
	require.NoError(t, err)
	assert.True(t, recorded)
}

type failingKV struct {
	*storage.MemoryStore
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("read-only filesystem")
}

func TestRecordAnswerPersistFailureKeepsAnswer(t *testing.T) {
	ctx := context.Background()
	b := NewScoreboard(failingKV{storage.NewMemoryStore()}, testNamespace, nil)
	_, err := b.Load(ctx)
	require.NoError(t, err)

	_, recorded, err := b.RecordAnswer(ctx, "a1", true)
	assert.True(t, recorded)
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)

	_, ok := b.Answer("a1")
	assert.True(t, ok)
	assert.Equal(t, 100, b.Score().Score)
}

func TestScoreboardAnswersIsACopy(t *testing.T) {
	ctx := context.Background()
	b := newScoreboard(t, storage.NewMemoryStore())
	_, _, _ = b.RecordAnswer(ctx, "a1", true)

	answers := b.Answers()
	delete(answers, "a1")

	_, ok := b.Answer("a1")
	assert.True(t, ok)
}

// unreadableKV fails every read while unreadable is set.
type unreadableKV struct {
	*storage.MemoryStore
	unreadable bool
}

func (u *unreadableKV) Get(ctx context.Context, key string) (string, bool, error) {
	if u.unreadable {
		return "", false, &domain.StorageError{Op: "get", Key: key, Err: errors.New("database is locked")}
	}
	return u.MemoryStore.Get(ctx, key)
}

func TestScoreboardReadFailureKeepsDurableAnswers(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	first := newScoreboard(t, kv)
	_, _, err := first.RecordAnswer(ctx, "a", true)
	require.NoError(t, err)
	_, _, err = first.RecordAnswer(ctx, "b", true)
	require.NoError(t, err)

	flaky := &unreadableKV{MemoryStore: kv, unreadable: true}
	second := NewScoreboard(flaky, testNamespace, nil).WithClock(func() time.Time { return fixedNow })
	_, err = second.Load(ctx)
	require.True(t, domain.IsReadFailure(err))

	_, recorded, err := second.RecordAnswer(ctx, "c", true)
	require.Error(t, err)
	assert.False(t, recorded)
	assert.Error(t, second.ResetScore(ctx))

	third := newScoreboard(t, kv)
	assert.Len(t, third.Answers(), 2)
	assert.Equal(t, domain.ScoreState{Score: 200, Streak: 2}, third.Score())

	flaky.unreadable = false
	_, recorded, err = second.RecordAnswer(ctx, "c", true)
	require.NoError(t, err)
	assert.True(t, recorded)

	fourth := newScoreboard(t, kv)
	assert.Len(t, fourth.Answers(), 3)
	assert.Equal(t, domain.ScoreState{Score: 300, Streak: 3}, fourth.Score())
}

func TestScoreboardLoadRejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	docs := map[string]string{
		"negative score":  `{"answers":{},"score":{"score":-250,"streak":0}}`,
		"negative streak": `{"answers":{},"score":{"score":0,"streak":-3}}`,
		"mismatched key":  `{"answers":{"x":{"articleId":"y","wasCorrect":true,"answeredAt":"2025-03-03T12:00:00Z"}},"score":{"score":100,"streak":1}}`,
		"missing id":      `{"answers":{"x":{"wasCorrect":true,"answeredAt":"2025-03-03T12:00:00Z"}},"score":{"score":100,"streak":1}}`,
	}

	for name, raw := range docs {
		t.Run(name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			require.NoError(t, kv.Set(ctx, testNamespace+AnswersKey, raw))

			b := NewScoreboard(kv, testNamespace, nil)
			st, err := b.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, st.Answers)
			assert.Equal(t, domain.ScoreState{}, st.Score)
			assert.Empty(t, b.Answers())
			assert.Equal(t, domain.ScoreState{}, b.Score())
		})
	}
}
