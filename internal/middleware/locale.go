package middleware

import (
	"github.com/gin-gonic/gin"
	"storefront-service/internal/models"
)

const contextLocale = "locale"

// Locale picks the response language from the lang query parameter, then
// Accept-Language, then fallback.
func Locale(fallback models.Locale) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := models.ParseLocale(c.GetHeader("Accept-Language"), fallback)
		if lang := c.Query("lang"); lang != "" {
			locale = models.ParseLocale(lang, locale)
		}

		c.Set(contextLocale, locale)
		c.Header("Content-Language", string(locale))
		c.Next()
	}
}

// LocaleFrom returns the request locale, English when the middleware did not run
func LocaleFrom(c *gin.Context) models.Locale {
	if v, ok := c.Get(contextLocale); ok {
		if locale, ok := v.(models.Locale); ok {
			return locale
		}
	}
	return models.LocaleEnglish
}
