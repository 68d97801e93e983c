package model

import "time"

// ContentType is the kind of resource a Content item links to.
type ContentType string

const (
	ContentImage   ContentType = "image"
	ContentVideo   ContentType = "video"
	ContentArticle ContentType = "article"
	ContentAudio   ContentType = "audio"
)

// Content is a saved link owned by one user.
//
// TagIDs holds references only; Tags and Owner are filled in by the
// repository when content is listed, so a ContentView can be rendered
// without any further lookups.
type Content struct {
	ID        string      `json:"id"        db:"id"`
	Link      string      `json:"link"      db:"link"`
	Type      ContentType `json:"type"      db:"type"`
	Title     string      `json:"title"     db:"title"`
	UserID    string      `json:"-"         db:"user_id"`
	TagIDs    []string    `json:"-"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// ContentView is a Content item with its owner and tags resolved.
type ContentView struct {
	ID        string      `json:"id"`
	Link      string      `json:"link"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	Tags      []Tag       `json:"tags"`
	Owner     Owner       `json:"owner"`
	CreatedAt time.Time   `json:"createdAt"`
}
