package mongostore

import (
	"regexp"

	"github.com/isdelr/mediaverse-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// emailCollation compares emails case-insensitively. The unique email index
// and every email lookup share it.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// userListFilter matches users whose email contains the needle, ignoring
// case. Regex metacharacters in the needle are matched literally.
func userListFilter(filter models.UserFilter) bson.M {
	if filter.EmailContains == "" {
		return bson.M{}
	}
	return bson.M{"email": bson.M{
		"$regex":   regexp.QuoteMeta(filter.EmailContains),
		"$options": "i",
	}}
}

func userListOptions(filter models.UserFilter) *options.FindOptions {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return opts
}

// profileUpdate sets every field Update may change. The subscription set,
// the subscriber counter and createdAt are left alone.
func profileUpdate(u models.User) bson.M {
	return bson.M{"$set": bson.M{
		"name":       u.Name,
		"email":      u.Email,
		"password":   u.PasswordHash,
		"avatar":     u.Avatar,
		"verified":   u.Verified,
		"admin":      u.Admin,
		"editor":     u.Editor,
		"fromGoogle": u.FromGoogle,
		"score":      u.Score,
		"status":     u.Status,
		"level":      u.Level,
		"updatedAt":  u.UpdatedAt.UTC(),
	}}
}

func addSubscriptionUpdate(targetID string) bson.M {
	return bson.M{"$addToSet": bson.M{"subscribedUsers": targetID}}
}

func removeSubscriptionUpdate(targetID string) bson.M {
	return bson.M{"$pull": bson.M{"subscribedUsers": targetID}}
}

// subscriberFilter matches every user subscribed to targetID.
func subscriberFilter(targetID string) bson.M {
	return bson.M{"subscribedUsers": targetID}
}

// subscribersUpdate adds delta to the counter in one server-side step,
// never going below zero.
func subscribersUpdate(delta int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"subscribers": bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$subscribers", delta}}}},
		}}},
	}
}

// reactionUpdate adds userID to the reaction's set and pulls it from the
// opposite one.
func reactionUpdate(userID string, reaction models.Reaction) bson.M {
	add, remove := "likes", "dislikes"
	if reaction == models.ReactionDislike {
		add, remove = remove, add
	}
	return bson.M{
		"$addToSet": bson.M{add: userID},
		"$pull":     bson.M{remove: userID},
	}
}
