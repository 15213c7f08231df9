// Package mongostore implements store.Store on MongoDB. Documents use the
// camelCase field names the web client already reads.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
	"github.com/isdelr/mediaverse-be/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is a MongoDB-backed store.Store.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	videos   *mongo.Collection
	levels   *mongo.Collection
	events   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// New connects to uri, ensures indexes and seeds the levels collection.
func New(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
		videos:   db.Collection("videos"),
		levels:   db.Collection("levels"),
		events:   db.Collection("events"),
	}
	if err := s.init(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(emailCollation),
		},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if _, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}}); err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	if _, err := s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "post", Value: 1}}}); err != nil {
		return fmt.Errorf("failed to create comment indexes: %w", err)
	}

	n, err := s.levels.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count levels: %w", err)
	}
	if n == 0 {
		docs := make([]any, 0, len(store.DefaultLevels))
		for _, l := range store.DefaultLevels {
			docs = append(docs, levelDoc{Name: l.Name, ThresholdScore: l.ThresholdScore})
		}
		if _, err := s.levels.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("failed to seed levels: %w", err)
		}
	}
	return nil
}

func (s *Store) Users() store.UserRepository       { return &userRepo{s.users} }
func (s *Store) Posts() store.PostRepository       { return &postRepo{s.posts} }
func (s *Store) Comments() store.CommentRepository { return &commentRepo{s.comments} }
func (s *Store) Videos() store.VideoRepository     { return &videoRepo{s.videos} }
func (s *Store) Levels() store.LevelRepository     { return &levelRepo{s.levels} }
func (s *Store) Events() store.EventRepository     { return &eventRepo{s.events} }

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}
	return err
}

func decodeAll[D any, M any](ctx context.Context, cur *mongo.Cursor, model func(D) M) ([]M, error) {
	defer cur.Close(ctx)
	out := []M{}
	for cur.Next(ctx) {
		var d D
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, model(d))
	}
	return out, cur.Err()
}

// --- users ---

type userRepo struct{ c *mongo.Collection }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	oid, err := assignID(user.ID)
	if err != nil {
		return err
	}
	if _, err := r.c.InsertOne(ctx, newUserDoc(*user, oid)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = oid.Hex()
	return nil
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (models.User, error) {
	var d userDoc
	if err := r.c.FindOne(ctx, filter, opts...).Decode(&d); err != nil {
		return models.User{}, notFound(err)
	}
	return d.model(), nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne().SetCollation(emailCollation))
}

func (r *userRepo) Update(ctx context.Context, user models.User) error {
	oid, err := objectID(user.ID)
	if err != nil {
		return err
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": oid}, profileUpdate(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	cur, err := r.c.Find(ctx, userListFilter(filter), userListOptions(filter))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return decodeAll(ctx, cur, userDoc.model)
}

func (r *userRepo) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	n, err := r.c.CountDocuments(ctx, userListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// updateSet applies a set operator to one user and reports whether the
// document changed.
func (r *userRepo) updateSet(ctx context.Context, userID string, update bson.M) (bool, error) {
	oid, err := objectID(userID)
	if err != nil {
		return false, err
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return false, fmt.Errorf("update subscriptions: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, common.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *userRepo) AddSubscription(ctx context.Context, userID, targetID string) (bool, error) {
	return r.updateSet(ctx, userID, addSubscriptionUpdate(targetID))
}

func (r *userRepo) RemoveSubscription(ctx context.Context, userID, targetID string) (bool, error) {
	return r.updateSet(ctx, userID, removeSubscriptionUpdate(targetID))
}

func (r *userRepo) RemoveSubscriber(ctx context.Context, targetID string) (int64, error) {
	res, err := r.c.UpdateMany(ctx, subscriberFilter(targetID), removeSubscriptionUpdate(targetID))
	if err != nil {
		return 0, fmt.Errorf("remove subscriber: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *userRepo) AdjustSubscribers(ctx context.Context, userID string, delta int) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": oid}, subscribersUpdate(delta))
	if err != nil {
		return fmt.Errorf("adjust subscribers: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- posts ---

type postRepo struct{ c *mongo.Collection }

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	oid, err := assignID(post.ID)
	if err != nil {
		return err
	}
	_, err = r.c.InsertOne(ctx, postDoc{
		ID:        oid,
		User:      post.UserID,
		Title:     post.Title,
		Slug:      post.Slug,
		Caption:   post.Caption,
		Photo:     post.Photo,
		CreatedAt: post.CreatedAt.UTC(),
		UpdatedAt: post.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	post.ID = oid.Hex()
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Post{}, err
	}
	var d postDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return models.Post{}, notFound(err)
	}
	return d.model(), nil
}

func (r *postRepo) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return decodeAll(ctx, cur, postDoc.model)
}

func (r *postRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := r.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	return res.DeletedCount, nil
}

// --- comments ---

type commentRepo struct{ c *mongo.Collection }

func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	oid, err := assignID(comment.ID)
	if err != nil {
		return err
	}
	_, err = r.c.InsertOne(ctx, commentDoc{
		ID:        oid,
		Post:      comment.PostID,
		User:      comment.UserID,
		Desc:      comment.Desc,
		CreatedAt: comment.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	comment.ID = oid.Hex()
	return nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{"post": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return decodeAll(ctx, cur, commentDoc.model)
}

func (r *commentRepo) DeleteByPostIDs(ctx context.Context, postIDs []string) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res, err := r.c.DeleteMany(ctx, bson.M{"post": bson.M{"$in": postIDs}})
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return res.DeletedCount, nil
}

// --- videos ---

type videoRepo struct{ c *mongo.Collection }

func (r *videoRepo) Create(ctx context.Context, video *models.Video) error {
	oid, err := assignID(video.ID)
	if err != nil {
		return err
	}
	likes, dislikes := video.Likes, video.Dislikes
	if likes == nil {
		likes = []string{}
	}
	if dislikes == nil {
		dislikes = []string{}
	}
	_, err = r.c.InsertOne(ctx, videoDoc{
		ID:        oid,
		UserID:    video.UserID,
		Title:     video.Title,
		VideoURL:  video.VideoURL,
		Views:     video.Views,
		Likes:     likes,
		Dislikes:  dislikes,
		CreatedAt: video.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	video.ID = oid.Hex()
	return nil
}

func (r *videoRepo) GetByID(ctx context.Context, id string) (models.Video, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Video{}, err
	}
	var d videoDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return models.Video{}, notFound(err)
	}
	return d.model(), nil
}

func (r *videoRepo) SetReaction(ctx context.Context, videoID, userID string, reaction models.Reaction) error {
	oid, err := objectID(videoID)
	if err != nil {
		return err
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": oid}, reactionUpdate(userID, reaction))
	if err != nil {
		return fmt.Errorf("set reaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- levels ---

type levelRepo struct{ c *mongo.Collection }

func (r *levelRepo) List(ctx context.Context) ([]models.Level, error) {
	opts := options.Find().SetSort(bson.D{{Key: "thresholdScore", Value: 1}, {Key: "levelName", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return decodeAll(ctx, cur, func(d levelDoc) models.Level {
		return models.Level{Name: d.Name, ThresholdScore: d.ThresholdScore}
	})
}

// --- events ---

type eventRepo struct{ c *mongo.Collection }

func (r *eventRepo) Create(ctx context.Context, event *models.Event) error {
	oid, err := assignID(event.ID)
	if err != nil {
		return err
	}
	_, err = r.c.InsertOne(ctx, eventDoc{
		ID:        oid,
		Type:      event.Type,
		Level:     event.Level,
		Message:   event.Message,
		UserID:    event.UserID,
		CreatedAt: event.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	event.ID = oid.Hex()
	return nil
}

func (r *eventRepo) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		return []models.Event{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return decodeAll(ctx, cur, eventDoc.model)
}
