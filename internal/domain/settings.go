package domain

import "strings"

// Language is a supported content and interface locale.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
	LanguageSpanish  Language = "es"
	LanguageFrench   Language = "fr"
	LanguageGerman   Language = "de"
)

// DefaultLanguage is used when neither a persisted value nor a device locale is usable.
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists the locales in preference order; the first entry is the fallback.
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageJapanese,
	LanguageSpanish,
	LanguageFrench,
	LanguageGerman,
}

// ParseLanguage validates a language code such as "ja" or "EN".
func ParseLanguage(raw string) (Language, error) {
	code := Language(strings.ToLower(strings.TrimSpace(raw)))
	for _, lang := range SupportedLanguages {
		if lang == code {
			return lang, nil
		}
	}
	return "", &UnsupportedLanguageError{Code: raw}
}

// Settings is the persisted preference document.
type Settings struct {
	Language Language `json:"language"`
}

// Validate rejects a language that is not a supported code in canonical form.
func (s Settings) Validate() error {
	parsed, err := ParseLanguage(string(s.Language))
	if err != nil {
		return err
	}
	if parsed != s.Language {
		return &UnsupportedLanguageError{Code: string(s.Language)}
	}
	return nil
}
