package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/middleware"
	"github.com/askforge/askforge/internal/service"
)

// PostHandler serves the post endpoints.
type PostHandler struct {
	forum  *service.ForumService
	logger *zap.Logger
}

func NewPostHandler(forum *service.ForumService, logger *zap.Logger) *PostHandler {
	return &PostHandler{forum: forum, logger: logger}
}

type createPostRequest struct {
	ChannelID uuid.UUID `json:"channel_id" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	Content   string    `json:"content" binding:"required"`
}

// Create handles POST /forums/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.forum.CreatePost(c.Request.Context(), middleware.GetIdentity(c), req.ChannelID, req.Title, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// List handles GET /forums/posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.forum.GetAllPosts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetByID handles GET /forums/posts/:id
func (h *PostHandler) GetByID(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := h.forum.GetPostByID(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// Resolve handles PATCH /forums/posts/:id/resolve
func (h *PostHandler) Resolve(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := h.forum.MarkPostResolved(c.Request.Context(), middleware.GetIdentity(c), postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// AiHelp handles POST /forums/posts/:id/ai-help
func (h *PostHandler) AiHelp(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	comment, err := h.forum.GetAiHelp(c.Request.Context(), middleware.GetIdentity(c), postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
