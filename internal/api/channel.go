package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/middleware"
	"github.com/askforge/askforge/internal/service"
)

// ChannelHandler serves the channel endpoints. The reads are public;
// creation is admin only, enforced on the route and again in the
// service layer.
type ChannelHandler struct {
	forum  *service.ForumService
	logger *zap.Logger
}

func NewChannelHandler(forum *service.ForumService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{forum: forum, logger: logger}
}

type createChannelRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create handles POST /forums/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.forum.CreateChannel(c.Request.Context(), middleware.GetIdentity(c), req.Name, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// List handles GET /forums/channels
func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.forum.GetAllChannels(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, channels)
}

// GetByID handles GET /forums/channels/:id
func (h *ChannelHandler) GetByID(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	ch, err := h.forum.GetChannelByID(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

// ListPosts handles GET /forums/channels/:id/posts
func (h *ChannelHandler) ListPosts(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	posts, err := h.forum.GetPostsByChannel(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}
