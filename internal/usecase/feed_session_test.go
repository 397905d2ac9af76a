package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/infrastructure/storage"
)

// scriptedSource serves pages by cursor. When gate is set, GetPage blocks
// until a value is received on it.
type scriptedSource struct {
	mu     sync.Mutex
	pages  map[string]domain.FeedPage
	errs   map[string]error
	calls  []domain.FetchParams
	gate   chan struct{}
	called chan struct{}
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{
		pages:  map[string]domain.FeedPage{},
		errs:   map[string]error{},
		called: make(chan struct{}, 16),
	}
}

func (s *scriptedSource) GetPage(ctx context.Context, params domain.FetchParams) (domain.FeedPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, params)
	gate := s.gate
	page := s.pages[params.Cursor]
	err := s.errs[params.Cursor]
	s.mu.Unlock()

	s.called <- struct{}{}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.FeedPage{}, ctx.Err()
		}
	}
	return page, err
}

func (s *scriptedSource) setPage(cursor string, page domain.FeedPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[cursor] = page
}

func (s *scriptedSource) block() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	return s.gate
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fixedLanguage domain.Language

func (l fixedLanguage) Language() domain.Language { return domain.Language(l) }

func articles(prefix string, fabricated ...bool) []domain.Article {
	out := make([]domain.Article, 0, len(fabricated))
	for i, fake := range fabricated {
		out = append(out, domain.Article{
			ID:           fmt.Sprintf("%s%d", prefix, i+1),
			Headline:     fmt.Sprintf("Headline %s%d", prefix, i+1),
			IsFabricated: fake,
		})
	}
	return out
}

func ids(items []domain.AnsweredArticle) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Article.ID)
	}
	return out
}

type sessionFixture struct {
	source  *scriptedSource
	board   *Scoreboard
	session *FeedSession
	events  []Event
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	source := newScriptedSource()
	source.setPage("", domain.FeedPage{
		Articles:   articles("a", false, true, false),
		NextCursor: "page-2",
		Total:      5,
	})
	source.setPage("page-2", domain.FeedPage{
		Articles: articles("b", true, false),
		Total:    5,
	})

	board := newScoreboard(t, storage.NewMemoryStore())
	f := &sessionFixture{source: source, board: board}
	f.session = NewFeedSession(FeedSessionDeps{
		Content:  source,
		Answers:  board,
		Language: fixedLanguage(domain.LanguageJapanese),
		PageSize: 3,
		Category: domain.Category("TECH"),
	})
	var mu sync.Mutex
	f.session.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		f.events = append(f.events, ev)
	})
	return f
}

func TestRefreshLoadsFirstPage(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.session.Refresh(context.Background()))

	view := f.session.View()
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(view.Items))
	assert.True(t, view.HasMore)
	assert.Equal(t, 5, view.Total)
	assert.Equal(t, -1, view.ExpandedIndex)
	assert.False(t, view.Loading)

	require.Len(t, f.source.calls, 1)
	assert.Equal(t, domain.FetchParams{Language: domain.LanguageJapanese, Limit: 3, Category: "TECH"}, f.source.calls[0])
	assert.Equal(t, []Event{{Kind: EventFeedReset, Count: 3}}, f.events)
}

func TestLoadMoreAppendsUntilExhausted(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	// An unloaded feed starts from the first page.
	more, err := f.session.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)

	more, err = f.session.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, ids(f.session.Items()))
	assert.Equal(t, "page-2", f.source.calls[1].Cursor)

	more, err = f.session.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, 2, f.source.callCount())
	assert.False(t, f.session.View().HasMore)
}

func TestLoadMoreIsDebouncedWhileInFlight(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))
	<-f.source.called

	gate := f.source.block()
	done := make(chan bool)
	go func() {
		more, _ := f.session.LoadMore(ctx)
		done <- more
	}()
	<-f.source.called

	assert.True(t, f.session.View().Loading)
	for i := 0; i < 3; i++ {
		more, err := f.session.LoadMore(ctx)
		require.NoError(t, err)
		assert.False(t, more)
	}
	assert.Equal(t, 2, f.source.callCount())

	close(gate)
	select {
	case more := <-done:
		assert.True(t, more)
	case <-time.After(time.Second):
		t.Fatal("load more did not finish")
	}
	assert.Len(t, f.session.Items(), 5)
}

func TestConcurrentLoadMoreFetchesFirstPageOnce(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	gate := f.source.block()

	const triggers = 8
	start := make(chan struct{})
	results := make(chan bool, triggers)
	for range triggers {
		go func() {
			<-start
			more, _ := f.session.LoadMore(ctx)
			results <- more
		}()
	}
	close(start)

	for range triggers - 1 {
		select {
		case more := <-results:
			assert.False(t, more)
		case <-time.After(time.Second):
			t.Fatal("a duplicate trigger is waiting on the network")
		}
	}
	assert.Equal(t, 1, f.source.callCount())

	close(gate)
	select {
	case more := <-results:
		assert.True(t, more)
	case <-time.After(time.Second):
		t.Fatal("first page did not load")
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(f.session.Items()))
}

func TestStaleResponseIsDiscardedAfterTabSwitch(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))
	<-f.source.called

	gate := f.source.block()
	done := make(chan struct{})
	go func() {
		defer close(done)
		more, err := f.session.LoadMore(ctx)
		assert.NoError(t, err)
		assert.False(t, more)
	}()
	<-f.source.called

	require.NoError(t, f.session.SetTab(TabToRead))
	assert.False(t, f.session.View().Loading)

	close(gate)
	<-done
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(f.session.Items()))
}

func TestStaleFirstPageIsDiscardedAfterRefresh(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	gate := f.source.block()
	first := make(chan error)
	go func() { first <- f.session.Refresh(ctx) }()
	<-f.source.called

	f.source.mu.Lock()
	f.source.gate = nil
	f.source.mu.Unlock()
	f.source.setPage("", domain.FeedPage{Articles: articles("n", false)})

	require.NoError(t, f.session.Refresh(ctx))
	<-f.source.called

	// The superseded request still holds the old page.
	close(gate)
	require.NoError(t, <-first)
	assert.Equal(t, []string{"n1"}, ids(f.session.Items()))
}

func TestSubmitAnswerScoresOnce(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))

	// Nothing expanded yet.
	_, ok := f.session.SubmitAnswer(ctx, true)
	assert.False(t, ok)

	require.True(t, f.session.SelectArticle(1))
	res, ok := f.session.SubmitAnswer(ctx, true)
	require.True(t, ok)
	assert.True(t, res.Correct)
	assert.Equal(t, "a2", res.Article.ID)
	assert.Equal(t, domain.ScoreState{Score: domain.PointsPerCorrectAnswer, Streak: 1}, res.Score)

	view := f.session.View()
	require.NotNil(t, view.Pending)
	assert.Equal(t, PendingAnswer{ArticleID: "a2", SelectedAsFabricated: true, Correct: true}, *view.Pending)
	assert.Equal(t, 1, view.ExpandedIndex)
	require.NotNil(t, view.Items[1].Answer)

	// Double taps during and after feedback are ignored.
	_, ok = f.session.SubmitAnswer(ctx, false)
	assert.False(t, ok)
	f.session.CompleteFeedback()
	_, ok = f.session.SubmitAnswer(ctx, false)
	assert.False(t, ok)

	assert.Equal(t, domain.ScoreState{Score: 100, Streak: 1}, f.board.Score())
	assert.Len(t, f.board.Answers(), 1)

	last := f.events[len(f.events)-1]
	assert.Equal(t, EventAnswerRecorded, last.Kind)
	require.NotNil(t, last.Answer)
	assert.Equal(t, "a2", last.Answer.ArticleID)
}

func TestWrongAnswerBreaksStreak(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))

	require.True(t, f.session.SelectArticle(0))
	res, ok := f.session.SubmitAnswer(ctx, false)
	require.True(t, ok)
	assert.True(t, res.Correct)
	f.session.CompleteFeedback()

	require.True(t, f.session.SelectArticle(2))
	res, ok = f.session.SubmitAnswer(ctx, true)
	require.True(t, ok)
	assert.False(t, res.Correct)
	assert.Equal(t, domain.ScoreState{Score: 100, Streak: 0}, res.Score)
}

func TestSelectArticleRules(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))

	assert.False(t, f.session.SelectArticle(-1))
	assert.False(t, f.session.SelectArticle(3))

	require.True(t, f.session.SelectArticle(0))
	_, ok := f.session.SubmitAnswer(ctx, false)
	require.True(t, ok)

	// The article showing feedback cannot be re-selected until it completes.
	assert.False(t, f.session.SelectArticle(0))

	// Selecting another article clears the pending verdict.
	require.True(t, f.session.SelectArticle(1))
	view := f.session.View()
	assert.Nil(t, view.Pending)
	assert.Equal(t, 1, view.ExpandedIndex)

	assert.Equal(t, 2, f.session.IndexOf("a3"))
	assert.Equal(t, -1, f.session.IndexOf("missing"))
}

func TestToReadTabKeepsAnswersFromCurrentVisit(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))

	// Answered on the latest tab.
	require.True(t, f.session.SelectArticle(0))
	_, ok := f.session.SubmitAnswer(ctx, false)
	require.True(t, ok)
	f.session.CompleteFeedback()

	require.NoError(t, f.session.SetTab(TabToRead))
	assert.Equal(t, []string{"a2", "a3"}, ids(f.session.Items()))

	// Answered while on to-read: stays visible for this visit.
	require.True(t, f.session.SelectArticle(0))
	_, ok = f.session.SubmitAnswer(ctx, true)
	require.True(t, ok)
	items := f.session.Items()
	assert.Equal(t, []string{"a2", "a3"}, ids(items))
	assert.NotNil(t, items[0].Answer)
	assert.Nil(t, items[1].Answer)

	// Re-entering the tab starts a new visit.
	require.NoError(t, f.session.SetTab(TabToRead))
	assert.Equal(t, []string{"a3"}, ids(f.session.Items()))

	require.NoError(t, f.session.SetTab(TabLatest))
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(f.session.Items()))
}

func TestSetTabRejectsUnknownTab(t *testing.T) {
	f := newSessionFixture(t)
	assert.Error(t, f.session.SetTab("archive"))
	assert.Equal(t, TabLatest, f.session.View().ActiveTab)
}

func TestRefreshFailureKeepsFeedAndEmitsEvent(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))

	boom := domain.NewFetchError(503, errors.New("maintenance"))
	f.source.mu.Lock()
	f.source.errs[""] = boom
	f.source.mu.Unlock()

	err := f.session.Refresh(ctx)
	require.ErrorIs(t, err, boom)

	view := f.session.View()
	assert.Len(t, view.Items, 3)
	assert.ErrorIs(t, view.Err, boom)
	assert.Equal(t, EventLoadFailed, f.events[len(f.events)-1].Kind)
}

func TestInvalidateDropsFeed(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.session.Refresh(ctx))
	require.True(t, f.session.SelectArticle(0))

	f.session.Invalidate()

	view := f.session.View()
	assert.Empty(t, view.Items)
	assert.Equal(t, -1, view.ExpandedIndex)
	assert.True(t, view.HasMore)
	assert.Equal(t, EventFeedReset, f.events[len(f.events)-1].Kind)
}
