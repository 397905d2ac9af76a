// Package i18n holds the interface strings of the quiz and the device locale lookup.
package i18n

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"NewsQuiz/internal/domain"
)

// Message keys used by the command line front end.
const (
	KeyFeedHeader     = "feed.header"
	KeyFeedEmpty      = "feed.empty"
	KeyFeedFallback   = "feed.fallback"
	KeyFeedMore       = "feed.more"
	KeyMarkUnanswered = "mark.unanswered"
	KeyMarkCorrect    = "mark.correct"
	KeyMarkIncorrect  = "mark.incorrect"
	KeyScoreLine      = "score.line"
	KeyStatsLine      = "stats.line"
	KeyVerdictCorrect = "verdict.correct"
	KeyVerdictWrong   = "verdict.wrong"
	KeyVerdictReason  = "verdict.reason"
	KeyAlreadyAnswer  = "answer.already"
	KeyNotFound       = "article.notfound"
	KeyResetScore     = "reset.score"
	KeyResetAll       = "reset.all"
	KeyLanguageLine   = "language.line"
	KeyPlayHelp       = "play.help"
	KeyLoadFailed     = "load.failed"
)

var translations = map[domain.Language]map[string]string{
	domain.LanguageEnglish: {
		KeyFeedHeader:     "%d articles (%s)",
		KeyFeedEmpty:      "Nothing to read.",
		KeyFeedFallback:   "Offline: showing bundled articles.",
		KeyFeedMore:       "More articles available.",
		KeyMarkUnanswered: "NEW",
		KeyMarkCorrect:    "OK",
		KeyMarkIncorrect:  "MISS",
		KeyScoreLine:      "Score: %d  Streak: %d",
		KeyStatsLine:      "Answered: %d  Correct: %d  Incorrect: %d  Accuracy: %.0f%%",
		KeyVerdictCorrect: "Correct! +%d",
		KeyVerdictWrong:   "Wrong.",
		KeyVerdictReason:  "Why it was fabricated: %s",
		KeyAlreadyAnswer:  "Article %s was already answered.",
		KeyNotFound:       "Article %s not found.",
		KeyResetScore:     "Score reset.",
		KeyResetAll:       "All answers and score deleted.",
		KeyLanguageLine:   "Language: %s",
		KeyPlayHelp:       "n/p move, f fake, r real, m more, t tab, q quit",
		KeyLoadFailed:     "Could not load articles: %v",
	},
	domain.LanguageJapanese: {
		KeyFeedHeader:     "%d件の記事 (%s)",
		KeyFeedEmpty:      "読む記事はありません。",
		KeyFeedFallback:   "オフライン: 同梱の記事を表示しています。",
		KeyFeedMore:       "さらに記事があります。",
		KeyMarkUnanswered: "未回答",
		KeyMarkCorrect:    "正解",
		KeyMarkIncorrect:  "不正解",
		KeyScoreLine:      "スコア: %d  連続正解: %d",
		KeyStatsLine:      "回答: %d  正解: %d  不正解: %d  正答率: %.0f%%",
		KeyVerdictCorrect: "正解! +%d",
		KeyVerdictWrong:   "不正解。",
		KeyVerdictReason:  "捏造の理由: %s",
		KeyAlreadyAnswer:  "記事 %s は回答済みです。",
		KeyNotFound:       "記事 %s が見つかりません。",
		KeyResetScore:     "スコアをリセットしました。",
		KeyResetAll:       "すべての回答とスコアを削除しました。",
		KeyLanguageLine:   "言語: %s",
		KeyPlayHelp:       "n/p 移動, f 捏造, r 本物, m 続き, t タブ, q 終了",
		KeyLoadFailed:     "記事を読み込めませんでした: %v",
	},
	domain.LanguageSpanish: {
		KeyFeedHeader:     "%d artículos (%s)",
		KeyFeedEmpty:      "Nada que leer.",
		KeyFeedFallback:   "Sin conexión: mostrando artículos incluidos.",
		KeyFeedMore:       "Hay más artículos.",
		KeyMarkUnanswered: "NUEVO",
		KeyMarkCorrect:    "BIEN",
		KeyMarkIncorrect:  "MAL",
		KeyScoreLine:      "Puntos: %d  Racha: %d",
		KeyStatsLine:      "Respondidas: %d  Correctas: %d  Incorrectas: %d  Precisión: %.0f%%",
		KeyVerdictCorrect: "¡Correcto! +%d",
		KeyVerdictWrong:   "Incorrecto.",
		KeyVerdictReason:  "Por qué era inventada: %s",
		KeyAlreadyAnswer:  "El artículo %s ya fue respondido.",
		KeyNotFound:       "No se encontró el artículo %s.",
		KeyResetScore:     "Puntuación reiniciada.",
		KeyResetAll:       "Se borraron todas las respuestas y la puntuación.",
		KeyLanguageLine:   "Idioma: %s",
		KeyPlayHelp:       "n/p mover, f falsa, r real, m más, t pestaña, q salir",
		KeyLoadFailed:     "No se pudieron cargar los artículos: %v",
	},
	domain.LanguageFrench: {
		KeyFeedHeader:     "%d articles (%s)",
		KeyFeedEmpty:      "Rien à lire.",
		KeyFeedFallback:   "Hors ligne : articles intégrés affichés.",
		KeyFeedMore:       "D'autres articles sont disponibles.",
		KeyMarkUnanswered: "NOUVEAU",
		KeyMarkCorrect:    "JUSTE",
		KeyMarkIncorrect:  "FAUX",
		KeyScoreLine:      "Score : %d  Série : %d",
		KeyStatsLine:      "Réponses : %d  Justes : %d  Fausses : %d  Précision : %.0f%%",
		KeyVerdictCorrect: "Bravo ! +%d",
		KeyVerdictWrong:   "Raté.",
		KeyVerdictReason:  "Pourquoi c'était inventé : %s",
		KeyAlreadyAnswer:  "L'article %s a déjà une réponse.",
		KeyNotFound:       "Article %s introuvable.",
		KeyResetScore:     "Score remis à zéro.",
		KeyResetAll:       "Toutes les réponses et le score ont été supprimés.",
		KeyLanguageLine:   "Langue : %s",
		KeyPlayHelp:       "n/p déplacer, f faux, r vrai, m plus, t onglet, q quitter",
		KeyLoadFailed:     "Impossible de charger les articles : %v",
	},
	domain.LanguageGerman: {
		KeyFeedHeader:     "%d Artikel (%s)",
		KeyFeedEmpty:      "Nichts zu lesen.",
		KeyFeedFallback:   "Offline: mitgelieferte Artikel werden angezeigt.",
		KeyFeedMore:       "Weitere Artikel verfügbar.",
		KeyMarkUnanswered: "NEU",
		KeyMarkCorrect:    "RICHTIG",
		KeyMarkIncorrect:  "FALSCH",
		KeyScoreLine:      "Punkte: %d  Serie: %d",
		KeyStatsLine:      "Beantwortet: %d  Richtig: %d  Falsch: %d  Quote: %.0f%%",
		KeyVerdictCorrect: "Richtig! +%d",
		KeyVerdictWrong:   "Falsch.",
		KeyVerdictReason:  "Warum erfunden: %s",
		KeyAlreadyAnswer:  "Artikel %s wurde bereits beantwortet.",
		KeyNotFound:       "Artikel %s nicht gefunden.",
		KeyResetScore:     "Punktestand zurückgesetzt.",
		KeyResetAll:       "Alle Antworten und Punkte gelöscht.",
		KeyLanguageLine:   "Sprache: %s",
		KeyPlayHelp:       "n/p bewegen, f erfunden, r echt, m mehr, t Tab, q beenden",
		KeyLoadFailed:     "Artikel konnten nicht geladen werden: %v",
	},
}

// Translator renders interface strings in the active language. Keys missing
// from a language fall back to English.
type Translator struct {
	catalog catalog.Catalog

	mu      sync.RWMutex
	lang    domain.Language
	printer *message.Printer
}

// NewTranslator builds the catalog and activates lang.
func NewTranslator(lang domain.Language) (*Translator, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, entries := range translations {
		tag := language.Make(string(code))
		for key, msg := range entries {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("i18n: register %s/%s: %w", code, key, err)
			}
		}
	}

	t := &Translator{catalog: builder}
	if err := t.SetLanguage(lang); err != nil {
		return nil, err
	}
	return t, nil
}

// SetLanguage switches the active bundle.
func (t *Translator) SetLanguage(lang domain.Language) error {
	parsed, err := domain.ParseLanguage(string(lang))
	if err != nil {
		return err
	}
	printer := message.NewPrinter(language.Make(string(parsed)), message.Catalog(t.catalog))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lang = parsed
	t.printer = printer
	return nil
}

// Language returns the active language.
func (t *Translator) Language() domain.Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// Sprintf formats the message registered under key.
func (t *Translator) Sprintf(key string, args ...interface{}) string {
	t.mu.RLock()
	p := t.printer
	t.mu.RUnlock()
	return p.Sprintf(key, args...)
}
