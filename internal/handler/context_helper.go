package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/middleware"
	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/vocab"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

// langFromRequest resolves the response language from the lang query
// parameter, falling back to the Accept-Language header. Unknown codes
// normalise to English.
func langFromRequest(c *gin.Context) vocab.Lang {
	if lang := c.Query("lang"); lang != "" {
		return vocab.NormalizeLang(lang)
	}
	header := c.GetHeader("Accept-Language")
	if len(header) > 2 {
		header = header[:2]
	}
	return vocab.NormalizeLang(header)
}
