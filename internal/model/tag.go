package model

import "time"

// Tag is a global label shared by every user's content.
// Titles are unique and compared case-sensitively.
type Tag struct {
	ID        string    `json:"id"    db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"-"     db:"created_at"`
}
