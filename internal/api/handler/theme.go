package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrforge/qrforge/internal/theme"
)

// ThemeHandler serves the built-in document themes
type ThemeHandler struct{}

// NewThemeHandler creates a new theme handler
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// ListThemes handles GET /api/v1/themes
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"themes":  theme.All(),
		"default": theme.DefaultName,
	})
}
