package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/middleware"
	"github.com/askforge/askforge/internal/service"
)

// AIHandler serves the raw completion passthrough.
type AIHandler struct {
	forum  *service.ForumService
	logger *zap.Logger
}

func NewAIHandler(forum *service.ForumService, logger *zap.Logger) *AIHandler {
	return &AIHandler{forum: forum, logger: logger}
}

// GenerateString handles GET /ai/string?prompt=
func (h *AIHandler) GenerateString(c *gin.Context) {
	prompt := c.Query("prompt")

	text, err := h.forum.GenerateText(c.Request.Context(), middleware.GetIdentity(c), prompt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": text})
}
