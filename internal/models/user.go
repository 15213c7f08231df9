package models

import "time"

// User represents a user account in the system.
type User struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Never expose this to the client
	Avatar          string    `json:"avatar"`
	Verified        bool      `json:"verified"`
	Admin           bool      `json:"admin"`
	Editor          bool      `json:"editor"`
	FromGoogle      bool      `json:"fromGoogle"`
	Score           int       `json:"score"`
	Subscribers     int       `json:"subscribers"`
	SubscribedUsers []string  `json:"subscribedUsers"`
	Status          string    `json:"status"`
	Level           string    `json:"level"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsSubscribedTo reports whether id is in the user's subscription set.
func (u User) IsSubscribedTo(id string) bool {
	for _, s := range u.SubscribedUsers {
		if s == id {
			return true
		}
	}
	return false
}

// UserView is the public shape of a user returned by the API.
type UserView struct {
	ID              string   `json:"_id"`
	Avatar          string   `json:"avatar"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Verified        bool     `json:"verified"`
	Admin           bool     `json:"admin"`
	Editor          bool     `json:"editor"`
	Score           int      `json:"score"`
	Subscribers     int      `json:"subscribers"`
	SubscribedUsers []string `json:"subscribedUsers"`
	Level           string   `json:"level"`
	Status          string   `json:"status"`
	Token           string   `json:"token,omitempty"`
}

// NewUserView projects u into its public shape. An empty token is omitted.
func NewUserView(u User, token string) UserView {
	subscribed := make([]string, len(u.SubscribedUsers))
	copy(subscribed, u.SubscribedUsers)

	return UserView{
		ID:              u.ID,
		Avatar:          u.Avatar,
		Name:            u.Name,
		Email:           u.Email,
		Verified:        u.Verified,
		Admin:           u.Admin,
		Editor:          u.Editor,
		Score:           u.Score,
		Subscribers:     u.Subscribers,
		SubscribedUsers: subscribed,
		Level:           u.Level,
		Status:          u.Status,
		Token:           token,
	}
}

// UserFilter narrows a user listing.
type UserFilter struct {
	EmailContains string // case-insensitive
	Offset        int
	Limit         int
}
