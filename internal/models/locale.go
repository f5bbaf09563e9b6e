package models

import "strings"

// Locale is a storefront display language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// ParseLocale resolves a language tag such as "ar-SA" or an Accept-Language
// header. Anything unrecognised yields fallback.
func ParseLocale(value string, fallback Locale) Locale {
	for _, part := range strings.Split(value, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		tag = strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		switch Locale(tag) {
		case LocaleEnglish, LocaleArabic:
			return Locale(tag)
		}
	}
	return fallback
}

// Dir returns the text direction for the locale.
func (l Locale) Dir() string {
	if l == LocaleArabic {
		return "rtl"
	}
	return "ltr"
}

// Pick returns the Arabic text for the Arabic locale when it is present,
// otherwise the English text.
func (l Locale) Pick(en, ar string) string {
	if l == LocaleArabic && ar != "" {
		return ar
	}
	return en
}
