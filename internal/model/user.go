// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, composition rather than inheritance.
package model

import "time"

// User represents a registered account.
//
// PasswordHash carries the `json:"-"` tag so the bcrypt hash can never be
// serialized into a response, even if a handler encodes a whole User.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"` // unique across all users
	PasswordHash string    `json:"-"         db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName"  db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Owner is the denormalized slice of a User embedded in content views.
type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
}
