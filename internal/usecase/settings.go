package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsQuiz/internal/domain"
	"NewsQuiz/internal/ports"
	"NewsQuiz/internal/state"
)

// SettingsKey is the document name of the settings state inside the namespace.
const SettingsKey = "settings"

// Settings holds the active language and forwards changes to subscribers.
type Settings struct {
	store    *state.Store[domain.Settings]
	fallback domain.Language
	detect   func() domain.Language
	logger   *slog.Logger
}

// NewSettings builds the store under namespace+SettingsKey. detect is
// consulted once, on the first run without a persisted document.
func NewSettings(kv ports.KeyValueStore, namespace string, fallback domain.Language, detect func() domain.Language, log *slog.Logger) *Settings {
	if _, err := domain.ParseLanguage(string(fallback)); err != nil {
		fallback = domain.DefaultLanguage
	}
	defaults := func() domain.Settings { return domain.Settings{Language: fallback} }
	return &Settings{
		store:    state.New(kv, namespace+SettingsKey, defaults, log, state.WithValidator(domain.Settings.Validate)),
		fallback: fallback,
		detect:   detect,
		logger:   log,
	}
}

// Init restores the persisted language, or detects and persists the device
// language when no valid document exists. A persistence failure is returned
// but the detected language stays active. When the document cannot be read
// the fallback stays active in memory and nothing is written.
func (s *Settings) Init(ctx context.Context) (domain.Language, error) {
	current, found, err := s.store.Load(ctx)
	if err != nil {
		return s.Language(), fmt.Errorf("load settings: %w", err)
	}
	if found {
		return current.Language, nil
	}

	lang := s.fallback
	if s.detect != nil {
		if detected, err := domain.ParseLanguage(string(s.detect())); err == nil {
			lang = detected
		}
	}

	if err := s.store.Set(ctx, domain.Settings{Language: lang}); err != nil {
		return lang, fmt.Errorf("persist initial language: %w", err)
	}
	return lang, nil
}

// Language returns the active language.
func (s *Settings) Language() domain.Language {
	return s.store.Get().Language
}

// SetLanguage validates, persists and broadcasts the new language. Setting
// the active language again is a no-op.
func (s *Settings) SetLanguage(ctx context.Context, lang domain.Language) error {
	parsed, err := domain.ParseLanguage(string(lang))
	if err != nil {
		return err
	}

	return s.store.Update(ctx, func(cur domain.Settings) (domain.Settings, bool) {
		if cur.Language == parsed {
			return cur, false
		}
		return domain.Settings{Language: parsed}, true
	})
}

// Subscribe is called after every language change.
func (s *Settings) Subscribe(fn func(prev, next domain.Language)) func() {
	return s.store.Subscribe(func(prev, next domain.Settings) {
		if prev.Language != next.Language {
			fn(prev.Language, next.Language)
		}
	})
}

// AttachLocalizer switches l to the active language now and on every change.
func (s *Settings) AttachLocalizer(l ports.Localizer) func() {
	if err := l.SetLanguage(s.Language()); err != nil {
		s.warn("localizer rejected language", "language", s.Language(), "error", err)
	}
	return s.Subscribe(func(_, next domain.Language) {
		if err := l.SetLanguage(next); err != nil {
			s.warn("localizer rejected language", "language", next, "error", err)
		}
	})
}

func (s *Settings) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
