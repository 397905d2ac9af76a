package ports

import (
	"context"
	"time"

	"NewsQuiz/internal/domain"
)

// KeyValueStore persists opaque string documents. Failures are *domain.StorageError.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// ContentRepository fetches one page of articles per call, without retries.
type ContentRepository interface {
	FetchPage(ctx context.Context, params domain.FetchParams) (domain.FeedPage, error)
}

// FallbackProvider supplies the bundled dataset used when the content source is unreachable.
type FallbackProvider interface {
	Articles() []domain.Article
}

// Localizer switches the active resource bundle of the presentation layer.
type Localizer interface {
	SetLanguage(lang domain.Language) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
