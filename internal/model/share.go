package model

import "time"

// ShareLink publishes a user's whole collection under an unguessable hash.
// A user has at most one ShareLink at a time.
type ShareLink struct {
	ID        string    `json:"id"   db:"id"`
	Hash      string    `json:"hash" db:"hash"`
	UserID    string    `json:"-"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SharedBrain is what an anonymous visitor sees for a share hash.
type SharedBrain struct {
	FirstName string        `json:"firstName"`
	Content   []ContentView `json:"content"`
}
