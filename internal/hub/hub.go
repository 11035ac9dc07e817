// Package hub is an in-process broadcaster for new-comment events,
// feeding the per-post live websocket feed. One hub per process;
// subscribers come and go with their connections.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/askforge/askforge/internal/models"
)

// subscriberBuffer bounds each subscriber's channel. A reader that
// stalls past this many pending events starts losing events rather
// than blocking the publisher.
const subscriberBuffer = 16

type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan models.CommentWithAuthor]struct{}
}

func New() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]map[chan models.CommentWithAuthor]struct{}),
	}
}

// Subscribe registers interest in one post's comments. The returned
// cancel func must be called when the consumer is done; it closes the
// channel.
func (h *Hub) Subscribe(postID uuid.UUID) (<-chan models.CommentWithAuthor, func()) {
	ch := make(chan models.CommentWithAuthor, subscriberBuffer)

	h.mu.Lock()
	if h.subs[postID] == nil {
		h.subs[postID] = make(map[chan models.CommentWithAuthor]struct{})
	}
	h.subs[postID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[postID]; ok {
			if _, still := set[ch]; still {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, postID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans a comment out to that post's subscribers. Non-blocking:
// a subscriber with a full buffer misses the event instead of stalling
// the request that created the comment.
func (h *Hub) Publish(comment models.CommentWithAuthor) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[comment.PostID] {
		select {
		case ch <- comment:
		default:
		}
	}
}
