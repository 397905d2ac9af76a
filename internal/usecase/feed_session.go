package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"NewsQuiz/internal/domain"
)

// Tab selects which part of the feed is rendered.
type Tab string

const (
	// TabLatest renders the whole feed.
	TabLatest Tab = "latest"
	// TabToRead renders unanswered articles plus those answered since the tab was opened.
	TabToRead Tab = "to-read"
)

// ParseTab validates a tab name.
func ParseTab(raw string) (Tab, error) {
	switch Tab(raw) {
	case TabLatest, TabToRead:
		return Tab(raw), nil
	default:
		return "", fmt.Errorf("unknown tab %q", raw)
	}
}

// EventKind names a notification emitted to the rendering layer.
type EventKind string

const (
	EventFeedReset      EventKind = "feed-reset"
	EventPageAppended   EventKind = "page-appended"
	EventAnswerRecorded EventKind = "answer-recorded"
	EventLoadFailed     EventKind = "load-failed"
)

// Event is delivered synchronously to session subscribers.
type Event struct {
	Kind   EventKind
	Count  int
	Answer *domain.Answer
	Err    error
}

// PendingAnswer is the verdict just submitted for the expanded article.
type PendingAnswer struct {
	ArticleID            string
	SelectedAsFabricated bool
	Correct              bool
}

// SubmitResult describes an accepted verdict.
type SubmitResult struct {
	Article domain.Article
	Answer  domain.Answer
	Correct bool
	Score   domain.ScoreState
}

// FeedView is everything the renderer needs for one pass.
type FeedView struct {
	Items         []domain.AnsweredArticle
	ExpandedIndex int
	ActiveTab     Tab
	Pending       *PendingAnswer
	Score         domain.ScoreState
	Loading       bool
	HasMore       bool
	Fallback      bool
	Total         int
	Err           error
}

type pageSource interface {
	GetPage(ctx context.Context, params domain.FetchParams) (domain.FeedPage, error)
}

type answerBook interface {
	RecordAnswer(ctx context.Context, articleID string, wasCorrect bool) (domain.Answer, bool, error)
	Answer(articleID string) (domain.Answer, bool)
	Answers() map[string]domain.Answer
	Score() domain.ScoreState
}

type languageSource interface {
	Language() domain.Language
}

// FeedSessionDeps wires the collaborators of a FeedSession.
type FeedSessionDeps struct {
	Content  pageSource
	Answers  answerBook
	Language languageSource
	PageSize int
	Category domain.Category
	Logger   *slog.Logger
}

// FeedSession is the transient controller between the content feed, the
// scoreboard and the renderer. It persists nothing itself.
type FeedSession struct {
	content  pageSource
	answers  answerBook
	language languageSource
	pageSize int
	category domain.Category
	logger   *slog.Logger
	newToken func() string

	mu              sync.Mutex
	feed            []domain.Article
	loaded          bool
	nextCursor      string
	total           int
	fallback        bool
	loading         bool
	token           string
	lastErr         error
	activeTab       Tab
	expandedID      string
	pending         *PendingAnswer
	feedbackID      string
	sessionAnswered map[string]struct{}

	listenersMu sync.Mutex
	listeners   []eventSubscription
	nextID      int
}

type eventSubscription struct {
	id int
	fn func(Event)
}

// NewFeedSession builds an empty session on the latest tab.
func NewFeedSession(deps FeedSessionDeps) *FeedSession {
	return &FeedSession{
		content:         deps.Content,
		answers:         deps.Answers,
		language:        deps.Language,
		pageSize:        deps.PageSize,
		category:        deps.Category,
		logger:          deps.Logger,
		newToken:        uuid.NewString,
		activeTab:       TabLatest,
		sessionAnswered: map[string]struct{}{},
	}
}

// Refresh loads the first page and replaces the feed. Any request still in
// flight is superseded and its response discarded.
func (s *FeedSession) Refresh(ctx context.Context) error {
	s.mu.Lock()
	token, params := s.beginLocked("")
	s.mu.Unlock()

	return s.fetchFirst(ctx, token, params)
}

// beginLocked marks a request for cursor as the latest one in flight.
func (s *FeedSession) beginLocked(cursor string) (string, domain.FetchParams) {
	token := s.newToken()
	s.token = token
	s.loading = true
	return token, s.paramsLocked(cursor)
}

func (s *FeedSession) fetchFirst(ctx context.Context, token string, params domain.FetchParams) error {
	page, err := s.content.GetPage(ctx, params)

	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		s.debug("discarding stale first page", "token", token)
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.logError("load feed failed", "error", err)
		s.emit(Event{Kind: EventLoadFailed, Err: err})
		return err
	}

	s.feed = slices.Clone(page.Articles)
	s.loaded = true
	s.nextCursor = page.NextCursor
	s.total = page.Total
	s.fallback = page.Fallback
	s.lastErr = nil
	s.expandedID = ""
	s.pending = nil
	s.feedbackID = ""
	s.sessionAnswered = map[string]struct{}{}
	count := len(s.feed)
	s.mu.Unlock()

	s.debug("feed loaded", "count", count, "fallback", page.Fallback, "has_more", page.HasMore())
	s.emit(Event{Kind: EventFeedReset, Count: count})
	return nil
}

// LoadMore appends the next page. It returns false without fetching when the
// feed is exhausted or a load is already in flight. An unloaded feed is
// loaded from the first page.
func (s *FeedSession) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return false, nil
	}
	if !s.loaded {
		token, params := s.beginLocked("")
		s.mu.Unlock()
		if err := s.fetchFirst(ctx, token, params); err != nil {
			return false, err
		}
		return true, nil
	}
	if s.nextCursor == "" {
		s.mu.Unlock()
		return false, nil
	}

	token, params := s.beginLocked(s.nextCursor)
	s.mu.Unlock()

	page, err := s.content.GetPage(ctx, params)

	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		s.debug("discarding stale page", "cursor", params.Cursor)
		return false, nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.logError("load more failed", "cursor", params.Cursor, "error", err)
		s.emit(Event{Kind: EventLoadFailed, Err: err})
		return false, err
	}

	s.feed = append(s.feed, page.Articles...)
	s.nextCursor = page.NextCursor
	if page.Total > s.total {
		s.total = page.Total
	}
	s.lastErr = nil
	count := len(page.Articles)
	s.mu.Unlock()

	s.emit(Event{Kind: EventPageAppended, Count: count})
	return count > 0, nil
}

// Invalidate drops the feed and supersedes in-flight requests, e.g. after
// the content language changed.
func (s *FeedSession) Invalidate() {
	s.mu.Lock()
	s.token = s.newToken()
	s.loading = false
	s.feed = nil
	s.loaded = false
	s.nextCursor = ""
	s.total = 0
	s.fallback = false
	s.lastErr = nil
	s.expandedID = ""
	s.pending = nil
	s.feedbackID = ""
	s.sessionAnswered = map[string]struct{}{}
	s.mu.Unlock()

	s.emit(Event{Kind: EventFeedReset})
}

// SetTab switches the rendered tab and starts a new tab session. A page
// request in flight is superseded.
func (s *FeedSession) SetTab(tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeTab = tab
	s.sessionAnswered = map[string]struct{}{}
	s.expandedID = ""
	s.pending = nil
	s.feedbackID = ""
	if s.loading {
		s.token = s.newToken()
		s.loading = false
	}
	return nil
}

// SelectArticle expands the article at index of the current derived list.
// It is refused for an index out of range or an article still showing
// answer feedback.
func (s *FeedSession) SelectArticle(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.deriveLocked()
	if index < 0 || index >= len(items) {
		return false
	}
	target := items[index].Article.ID
	if target == s.feedbackID {
		return false
	}

	s.expandedID = target
	s.pending = nil
	return true
}

// SubmitAnswer records the verdict for the expanded article. It is refused
// when nothing is expanded, the article already has an answer, or a
// submission for it is still being processed.
func (s *FeedSession) SubmitAnswer(ctx context.Context, selectedAsFabricated bool) (SubmitResult, bool) {
	s.mu.Lock()
	article, ok := s.expandedLocked()
	if !ok || article.ID == s.feedbackID {
		s.mu.Unlock()
		return SubmitResult{}, false
	}
	if _, answered := s.answers.Answer(article.ID); answered {
		s.mu.Unlock()
		return SubmitResult{}, false
	}

	correct := selectedAsFabricated == article.IsFabricated
	s.feedbackID = article.ID
	s.pending = &PendingAnswer{
		ArticleID:            article.ID,
		SelectedAsFabricated: selectedAsFabricated,
		Correct:              correct,
	}
	trackSession := s.activeTab == TabToRead
	if trackSession {
		s.sessionAnswered[article.ID] = struct{}{}
	}
	s.mu.Unlock()

	answer, recorded, err := s.answers.RecordAnswer(ctx, article.ID, correct)
	if err != nil {
		if recorded {
			s.warn("answer kept in memory only", "article_id", article.ID, "error", err)
		} else {
			s.warn("answer not recorded", "article_id", article.ID, "error", err)
		}
	}
	if !recorded {
		s.mu.Lock()
		if s.feedbackID == article.ID {
			s.feedbackID = ""
			s.pending = nil
		}
		if trackSession {
			delete(s.sessionAnswered, article.ID)
		}
		s.mu.Unlock()
		return SubmitResult{}, false
	}

	s.emit(Event{Kind: EventAnswerRecorded, Count: 1, Answer: &answer})
	return SubmitResult{
		Article: article,
		Answer:  answer,
		Correct: correct,
		Score:   s.answers.Score(),
	}, true
}

// CompleteFeedback marks the answer feedback for the expanded article as finished.
func (s *FeedSession) CompleteFeedback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbackID = ""
}

// Items derives the rendered list: the feed joined with current answers and
// filtered by the active tab.
func (s *FeedSession) Items() []domain.AnsweredArticle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deriveLocked()
}

// IndexOf returns the position of articleID in the derived list, or -1.
func (s *FeedSession) IndexOf(articleID string) int {
	items := s.Items()
	return slices.IndexFunc(items, func(item domain.AnsweredArticle) bool {
		return item.Article.ID == articleID
	})
}

// View returns a consistent snapshot for rendering.
func (s *FeedSession) View() FeedView {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.deriveLocked()
	expanded := -1
	if s.expandedID != "" {
		expanded = slices.IndexFunc(items, func(item domain.AnsweredArticle) bool {
			return item.Article.ID == s.expandedID
		})
	}

	var pending *PendingAnswer
	if s.pending != nil {
		p := *s.pending
		pending = &p
	}

	return FeedView{
		Items:         items,
		ExpandedIndex: expanded,
		ActiveTab:     s.activeTab,
		Pending:       pending,
		Score:         s.answers.Score(),
		Loading:       s.loading,
		HasMore:       !s.loaded || s.nextCursor != "",
		Fallback:      s.fallback,
		Total:         s.total,
		Err:           s.lastErr,
	}
}

// Subscribe registers fn for session events and returns a function that removes it.
func (s *FeedSession) Subscribe(fn func(Event)) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, eventSubscription{id: id, fn: fn})
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(sub eventSubscription) bool {
			return sub.id == id
		})
	}
}

func (s *FeedSession) emit(ev Event) {
	s.listenersMu.Lock()
	subs := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

func (s *FeedSession) deriveLocked() []domain.AnsweredArticle {
	answers := s.answers.Answers()
	items := make([]domain.AnsweredArticle, 0, len(s.feed))
	for _, article := range s.feed {
		item := domain.AnsweredArticle{Article: article}
		if a, ok := answers[article.ID]; ok {
			if s.activeTab == TabToRead {
				if _, keep := s.sessionAnswered[article.ID]; !keep {
					continue
				}
			}
			item.Answer = &a
		}
		items = append(items, item)
	}
	return items
}

func (s *FeedSession) expandedLocked() (domain.Article, bool) {
	if s.expandedID == "" {
		return domain.Article{}, false
	}
	for _, article := range s.feed {
		if article.ID == s.expandedID {
			return article, true
		}
	}
	return domain.Article{}, false
}

func (s *FeedSession) paramsLocked(cursor string) domain.FetchParams {
	lang := domain.DefaultLanguage
	if s.language != nil {
		lang = s.language.Language()
	}
	return domain.FetchParams{
		Language: lang,
		Cursor:   cursor,
		Limit:    s.pageSize,
		Category: s.category,
	}
}

func (s *FeedSession) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *FeedSession) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *FeedSession) logError(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
