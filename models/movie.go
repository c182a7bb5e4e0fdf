package models

import "time"

// Movie is a single favorite movie owned by exactly one user. A title may
// appear at most once within one user's list but may repeat across users.
type Movie struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Director  string    `json:"director,omitempty"`
	Year      int       `json:"year,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MovieUpdate captures a partial update: nil fields are left untouched.
type MovieUpdate struct {
	Title     *string `json:"title,omitempty"`
	Director  *string `json:"director,omitempty"`
	Year      *int    `json:"year,omitempty"`
	PosterURL *string `json:"posterUrl,omitempty"`
}

// MovieInfo is the normalized result of an external metadata lookup.
type MovieInfo struct {
	Title     string `json:"title"`
	Director  string `json:"director,omitempty"`
	Year      int    `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}
