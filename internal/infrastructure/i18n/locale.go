package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"NewsQuiz/internal/domain"
)

// localeEnv is consulted in POSIX precedence order; the first non-empty value wins.
var localeEnv = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(domain.SupportedLanguages))
	for _, lang := range domain.SupportedLanguages {
		tags = append(tags, language.Make(string(lang)))
	}
	return tags
}

// DetectLanguage maps the device locale to a supported language, returning
// fallback when the locale is unset, "C"/"POSIX" or not supported.
func DetectLanguage(getenv func(string) string, fallback domain.Language) domain.Language {
	for _, name := range localeEnv {
		if raw := strings.TrimSpace(getenv(name)); raw != "" {
			return MatchLocale(raw, fallback)
		}
	}
	return fallback
}

// MatchLocale matches a locale such as "ja_JP.UTF-8" or "de-AT".
func MatchLocale(raw string, fallback domain.Language) domain.Language {
	locale := raw
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return fallback
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return fallback
	}
	return domain.SupportedLanguages[idx]
}
