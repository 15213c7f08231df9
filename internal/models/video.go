package models

import "time"

// Reaction is a user's opinion of a video.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// Valid reports whether r is a known reaction.
func (r Reaction) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

// Video is an uploaded clip. Likes and Dislikes hold user ids and never
// share a member.
type Video struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"videoUrl"`
	Views     int       `json:"views"`
	Likes     []string  `json:"likes"`
	Dislikes  []string  `json:"dislikes"`
	CreatedAt time.Time `json:"createdAt"`
}
