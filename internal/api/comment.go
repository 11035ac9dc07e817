package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/middleware"
	"github.com/askforge/askforge/internal/service"
)

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	forum  *service.ForumService
	logger *zap.Logger
}

func NewCommentHandler(forum *service.ForumService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{forum: forum, logger: logger}
}

type createCommentRequest struct {
	PostID  uuid.UUID `json:"post_id" binding:"required"`
	Content string    `json:"content" binding:"required"`
}

// Create handles POST /forums/comments
//
// isAiGenerated is not part of the request body: clients never get to
// claim their comment came from the assistant. Only the ai-help flow
// sets that flag, internally.
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.forum.CreateComment(c.Request.Context(), middleware.GetIdentity(c), req.PostID, req.Content, false)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Accept handles PATCH /forums/comments/:id/accept
func (h *CommentHandler) Accept(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	comment, err := h.forum.AcceptComment(c.Request.Context(), middleware.GetIdentity(c), commentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}
