package models

import "time"

// User models a person maintaining a list of favorite movies. Names are a
// display label only and are not required to be unique.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
