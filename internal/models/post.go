package models

import "time"

// Post is an article authored by a user.
type Post struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Caption   string    `json:"caption"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is attached to a post.
type Comment struct {
	ID        string    `json:"_id"`
	PostID    string    `json:"post"`
	UserID    string    `json:"user"`
	Desc      string    `json:"desc"`
	CreatedAt time.Time `json:"createdAt"`
}
