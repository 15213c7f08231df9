package mongostore

import (
	"time"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"` // hashed
	Avatar          string             `bson:"avatar"`
	Verified        bool               `bson:"verified"`
	Admin           bool               `bson:"admin"`
	Editor          bool               `bson:"editor"`
	FromGoogle      bool               `bson:"fromGoogle"`
	Score           int                `bson:"score"`
	Subscribers     int                `bson:"subscribers"`
	SubscribedUsers []string           `bson:"subscribedUsers"`
	Status          string             `bson:"status"`
	Level           string             `bson:"level"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type postDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	User      string             `bson:"user"`
	Title     string             `bson:"title"`
	Slug      string             `bson:"slug"`
	Caption   string             `bson:"caption"`
	Photo     string             `bson:"photo"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Post      string             `bson:"post"`
	User      string             `bson:"user"`
	Desc      string             `bson:"desc"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type videoDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"userId"`
	Title     string             `bson:"title"`
	VideoURL  string             `bson:"videoUrl"`
	Views     int                `bson:"views"`
	Likes     []string           `bson:"likes"`
	Dislikes  []string           `bson:"dislikes"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type levelDoc struct {
	Name           string `bson:"levelName"`
	ThresholdScore int    `bson:"thresholdScore"`
}

type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Type      string             `bson:"type"`
	Level     string             `bson:"level"`
	Message   string             `bson:"message"`
	UserID    *string            `bson:"userId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// objectID parses a hex id. Ids that cannot name a document are reported
// as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrNotFound
	}
	return oid, nil
}

// assignID returns the ObjectID for a new record, generating one when id is
// empty.
func assignID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NewObjectID(), nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrValidation.WithMessage("invalid id " + id)
	}
	return oid, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func newUserDoc(u models.User, oid primitive.ObjectID) userDoc {
	subscribed := u.SubscribedUsers
	if subscribed == nil {
		subscribed = []string{}
	}
	return userDoc{
		ID:              oid,
		Name:            u.Name,
		Email:           u.Email,
		Password:        u.PasswordHash,
		Avatar:          u.Avatar,
		Verified:        u.Verified,
		Admin:           u.Admin,
		Editor:          u.Editor,
		FromGoogle:      u.FromGoogle,
		Score:           u.Score,
		Subscribers:     u.Subscribers,
		SubscribedUsers: subscribed,
		Status:          u.Status,
		Level:           u.Level,
		CreatedAt:       u.CreatedAt.UTC(),
		UpdatedAt:       u.UpdatedAt.UTC(),
	}
}

func (d userDoc) model() models.User {
	return models.User{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Email:           d.Email,
		PasswordHash:    d.Password,
		Avatar:          d.Avatar,
		Verified:        d.Verified,
		Admin:           d.Admin,
		Editor:          d.Editor,
		FromGoogle:      d.FromGoogle,
		Score:           d.Score,
		Subscribers:     d.Subscribers,
		SubscribedUsers: d.SubscribedUsers,
		Status:          d.Status,
		Level:           d.Level,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (d postDoc) model() models.Post {
	return models.Post{
		ID:        d.ID.Hex(),
		UserID:    d.User,
		Title:     d.Title,
		Slug:      d.Slug,
		Caption:   d.Caption,
		Photo:     d.Photo,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d commentDoc) model() models.Comment {
	return models.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.Post,
		UserID:    d.User,
		Desc:      d.Desc,
		CreatedAt: d.CreatedAt,
	}
}

func (d videoDoc) model() models.Video {
	return models.Video{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		VideoURL:  d.VideoURL,
		Views:     d.Views,
		Likes:     d.Likes,
		Dislikes:  d.Dislikes,
		CreatedAt: d.CreatedAt,
	}
}

func (d eventDoc) model() models.Event {
	return models.Event{
		ID:        d.ID.Hex(),
		Type:      d.Type,
		Level:     d.Level,
		Message:   d.Message,
		UserID:    d.UserID,
		CreatedAt: d.CreatedAt,
	}
}
