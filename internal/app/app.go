package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"NewsQuiz/internal/config"
	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/infrastructure/content"
	"NewsQuiz/internal/infrastructure/fallback"
	"NewsQuiz/internal/infrastructure/i18n"
	"NewsQuiz/internal/infrastructure/scheduler"
	"NewsQuiz/internal/infrastructure/storage"
	"NewsQuiz/internal/logging"
	"NewsQuiz/internal/ports"
	"NewsQuiz/internal/usecase"
)

const stopTimeout = 5 * time.Second

// Options tweak how New wires the application.
type Options struct {
	// Language overrides the persisted language for this process only.
	Language string
	// HTTPClient replaces the retrying client built from config.
	HTTPClient *http.Client
	// Getenv is used for device locale detection; os.Getenv when nil.
	Getenv func(string) string
}

type closableStore interface {
	ports.KeyValueStore
	Close() error
}

type fixedLanguage domain.Language

func (l fixedLanguage) Language() domain.Language { return domain.Language(l) }

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	store  closableStore

	Content    *usecase.ContentService
	Scoreboard *usecase.Scoreboard
	Settings   *usecase.Settings
	Translator *i18n.Translator
	Session    *usecase.FeedSession

	refresher *usecase.Scheduler
	detach    []func()
}

// New opens the configured store and builds every component.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	store, namespace, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	baseLogger.Debug("storage opened", "backend", cfg.Storage.Backend)

	client := opts.HTTPClient
	if client == nil {
		client = content.NewHTTPClient(cfg.Content.Timeout.Std(), content.RetryPolicy{
			MaxAttempts:     cfg.Content.Retry.MaxAttempts,
			InitialInterval: cfg.Content.Retry.InitialInterval.Std(),
			MaxInterval:     cfg.Content.Retry.MaxInterval.Std(),
		}, baseLogger.With("component", "content.retry"))
	}
	repo := content.NewHTTPRepository(cfg.Content.BaseURL, client, baseLogger.With("component", "content.http"))
	contentSvc := usecase.NewContentService(repo, fallback.NewProvider(), baseLogger.With("component", "content"))

	board := usecase.NewScoreboard(store, namespace, baseLogger.With("component", "scoreboard"))
	if _, err := board.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	defaultLang, err := domain.ParseLanguage(cfg.Settings.DefaultLanguage)
	if err != nil {
		baseLogger.Warn("invalid default language, using en", "language", cfg.Settings.DefaultLanguage)
		defaultLang = domain.DefaultLanguage
	}
	settings := usecase.NewSettings(store, namespace, defaultLang, func() domain.Language {
		return i18n.DetectLanguage(getenv, defaultLang)
	}, baseLogger.With("component", "settings"))
	if _, err := settings.Init(ctx); err != nil {
		if domain.IsReadFailure(err) {
			_ = store.Close()
			return nil, err
		}
		baseLogger.Warn("language not persisted", "error", err)
	}

	translator, err := i18n.NewTranslator(settings.Language())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		store:      store,
		Content:    contentSvc,
		Scoreboard: board,
		Settings:   settings,
		Translator: translator,
	}

	var lang interface{ Language() domain.Language } = settings
	if opts.Language != "" {
		override, err := domain.ParseLanguage(opts.Language)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		lang = fixedLanguage(override)
		if err := translator.SetLanguage(override); err != nil {
			_ = store.Close()
			return nil, err
		}
	} else {
		a.detach = append(a.detach, settings.AttachLocalizer(translator))
	}

	var category domain.Category
	if cfg.Content.Category != "" {
		category = domain.ParseCategory(cfg.Content.Category)
	}
	a.Session = usecase.NewFeedSession(usecase.FeedSessionDeps{
		Content:  contentSvc,
		Answers:  board,
		Language: lang,
		PageSize: cfg.Content.PageSize,
		Category: category,
		Logger:   baseLogger.With("component", "feed"),
	})
	a.detach = append(a.detach, settings.Subscribe(func(prev, next domain.Language) {
		baseLogger.Info("language changed, dropping feed", "from", prev, "to", next)
		a.Session.Invalidate()
	}))

	a.refresher = usecase.NewScheduler(
		scheduler.NewTicker(cfg.Content.RefreshInterval.Std()),
		a.Session,
		baseLogger.With("component", "refresher"),
	)

	return a, nil
}

// openStore returns the store and the key namespace the use cases should
// prepend. The Redis adapter applies the namespace itself so Clear stays inside it.
func openStore(ctx context.Context, cfg config.StorageConfig) (closableStore, string, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendMemory:
		return storage.NewMemoryStore(), cfg.Namespace, nil
	case config.BackendRedis:
		store, err := storage.OpenRedis(ctx, cfg.RedisURL, cfg.Namespace)
		if err != nil {
			return nil, "", fmt.Errorf("open redis store: %w", err)
		}
		return store, "", nil
	case config.BackendSQLite, "":
		store, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite store: %w", err)
		}
		return store, cfg.Namespace, nil
	default:
		return nil, "", fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Watch refreshes the feed on the configured interval until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	if err := a.refresher.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.refresher.Stop(stopCtx)
}

// Logger returns the base logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Close detaches subscribers and releases the store.
func (a *Application) Close() error {
	for _, fn := range a.detach {
		fn()
	}
	a.detach = nil
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
