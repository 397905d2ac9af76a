package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
)

// ContentService is the single entry point for obtaining articles. It
// substitutes the bundled dataset for a first page the source cannot deliver.
type ContentService struct {
	repository ports.ContentRepository
	fallback   ports.FallbackProvider
	logger     *slog.Logger
}

// NewContentService wires the repository and the fallback provider.
func NewContentService(repo ports.ContentRepository, fallback ports.FallbackProvider, log *slog.Logger) *ContentService {
	return &ContentService{repository: repo, fallback: fallback, logger: log}
}

// GetArticles returns the articles of the requested page.
func (s *ContentService) GetArticles(ctx context.Context, params domain.FetchParams) ([]domain.Article, error) {
	page, err := s.GetPage(ctx, params)
	if err != nil {
		return nil, err
	}
	return page.Articles, nil
}

// GetPage fetches a page. NO_CONTENT and NETWORK_ERROR on the first page
// yield the fallback dataset; FETCH_ERROR always propagates. For a
// continuation page NO_CONTENT ends the feed and NETWORK_ERROR propagates.
func (s *ContentService) GetPage(ctx context.Context, params domain.FetchParams) (domain.FeedPage, error) {
	if s.repository == nil {
		return s.fallbackPage(), nil
	}

	page, err := s.repository.FetchPage(ctx, params)
	if err == nil {
		return page, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.FeedPage{}, ctxErr
	}

	var ce *domain.ContentError
	if !errors.As(err, &ce) || !ce.Recoverable() {
		return domain.FeedPage{}, fmt.Errorf("fetch page: %w", err)
	}

	if params.Cursor != "" {
		if ce.Kind == domain.KindNoContent {
			s.debug("continuation page empty, feed exhausted", "cursor", params.Cursor)
			return domain.FeedPage{}, nil
		}
		return domain.FeedPage{}, fmt.Errorf("fetch page: %w", err)
	}

	s.warn("content source unavailable, serving fallback dataset", "kind", ce.Kind, "error", err)
	return s.fallbackPage(), nil
}

func (s *ContentService) fallbackPage() domain.FeedPage {
	var articles []domain.Article
	if s.fallback != nil {
		articles = s.fallback.Articles()
	}
	return domain.FeedPage{
		Articles: articles,
		Total:    len(articles),
		Fallback: true,
	}
}

func (s *ContentService) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *ContentService) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
