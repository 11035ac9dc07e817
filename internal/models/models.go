package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed set. The authorization layer compares against these
// values; anything else in a token is rejected at parse time.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered forum member.
//
// PasswordHash is a bcrypt hash, never the plaintext, and never leaves
// the process: the json:"-" tag keeps it out of every response body.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary strips a user down to what other users are allowed to see.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Role: u.Role}
}

// UserSummary is the public projection of a user, embedded in posts
// and comments as the author.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

// Channel is a named topic container grouping posts. Channel names are
// globally unique (enforced by the DB, not just the pre-check).
type Channel struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a question inside a channel. AuthorID and ChannelID are
// immutable after creation; IsResolved only ever goes false -> true.
type Post struct {
	ID         uuid.UUID `json:"id"`
	ChannelID  uuid.UUID `json:"channel_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsResolved bool      `json:"is_resolved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Comment is a reply to a post. IsAccepted only ever goes
// false -> true, and only the post's author can flip it.
type Comment struct {
	ID            uuid.UUID `json:"id"`
	PostID        uuid.UUID `json:"post_id"`
	AuthorID      uuid.UUID `json:"author_id"`
	Content       string    `json:"content"`
	IsAiGenerated bool      `json:"is_ai_generated"`
	IsAccepted    bool      `json:"is_accepted"`
	CreatedAt     time.Time `json:"created_at"`
}

// ---------------------------------------------------------------
// Composed read views.
//
// The entity structs above mirror their tables. The read endpoints
// return joined shapes (post with author, channel with posts, ...);
// those live here as separate structs so the stores can scan joined
// rows directly and the service never reaches back for N extra
// lookups it already has the data for.
// ---------------------------------------------------------------

// CommentWithAuthor is a comment plus its author's public summary.
type CommentWithAuthor struct {
	Comment
	Author UserSummary `json:"author"`
}

// PostWithAuthor is a post plus its author's public summary.
type PostWithAuthor struct {
	Post
	Author UserSummary `json:"author"`
}

// PostSummary is the list-view shape: author, owning channel's name,
// and a comment count instead of the full comment bodies.
type PostSummary struct {
	Post
	Author       UserSummary `json:"author"`
	ChannelName  string      `json:"channel_name"`
	CommentCount int         `json:"comment_count"`
}

// PostThread is a post with its author and full comment thread,
// comments ordered oldest first.
type PostThread struct {
	Post
	Author   UserSummary         `json:"author"`
	Comments []CommentWithAuthor `json:"comments"`
}

// PostDetail is the single-post shape: the thread plus the owning
// channel.
type PostDetail struct {
	PostThread
	Channel Channel `json:"channel"`
}

// ChannelWithPosts is the channel list-view shape.
type ChannelWithPosts struct {
	Channel
	Posts []Post `json:"posts"`
}

// ChannelDetail is the single-channel shape: every post with its
// author and comment thread.
type ChannelDetail struct {
	Channel
	Posts []PostThread `json:"posts"`
}
