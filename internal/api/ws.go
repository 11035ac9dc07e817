package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/askforge/askforge/internal/hub"
	"github.com/askforge/askforge/internal/service"
)

const wsWriteTimeout = 10 * time.Second

// FeedHandler streams newly created comments on a post over a
// websocket, so an open thread updates without polling.
type FeedHandler struct {
	forum    *service.ForumService
	events   *hub.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewFeedHandler(forum *service.ForumService, events *hub.Hub, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		forum:  forum,
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is read-only public data, same as GET on the
			// post; cross-origin browsers may subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Live handles GET /forums/posts/:id/live
func (h *FeedHandler) Live(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	// Reject unknown posts before upgrading; after the upgrade there
	// is no clean way to send a 404.
	if _, err := h.forum.GetPostByID(c.Request.Context(), postID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	comments, cancel := h.events.Subscribe(postID)
	defer cancel()

	// The feed never reads application data, but a read loop is still
	// needed to notice the peer closing the connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case comment, ok := <-comments:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(comment); err != nil {
				h.logger.Debug("live feed write failed",
					zap.String("post_id", postID.String()),
					zap.Error(err),
				)
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
