// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/sneakers-backend/internal/i18n"
)

// langAliases maps regional tags onto the locale that serves them.
var langAliases = map[string]string{
	"zh_Hant": "zh_TW",
	"zh_HK":   "zh_TW",
	"en_US":   "en",
	"en_GB":   "en",
}

// I18nMiddleware picks the response language from Accept-Language. Only the
// first preference is honoured; unknown tags use defaultLang.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", resolveLang(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

func resolveLang(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8"
	tag := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	tag = strings.ReplaceAll(tag, "-", "_")
	if alias, ok := langAliases[tag]; ok {
		tag = alias
	}

	if i18n.Supports(tag) {
		return tag
	}
	if base, _, found := strings.Cut(tag, "_"); found && i18n.Supports(base) {
		return base
	}
	return defaultLang
}
