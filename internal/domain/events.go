package domain

import "time"

// Event types published after a committed post change.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// Event is the envelope written to the message bus.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type PostCreated struct {
	PostID      uint   `json:"postId"`
	Title       string `json:"title"`
	CategoryIDs []uint `json:"categoryIds"`
	TagIDs      []uint `json:"tagIds"`
}

type PostUpdated struct {
	PostID      uint   `json:"postId"`
	Title       string `json:"title"`
	Version     uint   `json:"version"`
	CategoryIDs []uint `json:"categoryIds"`
	TagIDs      []uint `json:"tagIds"`
}

type PostDeleted struct {
	PostID uint `json:"postId"`
}

// PostID returns the post the event is about, or 0 for unknown payloads.
func (e Event) PostID() uint {
	switch p := e.Payload.(type) {
	case PostCreated:
		return p.PostID
	case PostUpdated:
		return p.PostID
	case PostDeleted:
		return p.PostID
	default:
		return 0
	}
}
