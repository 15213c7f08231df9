package sqlstore

import (
	"context"
	"fmt"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/models"
)

type videoRepo struct{ s *Store }

func (r *videoRepo) Create(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = newID()
	}
	_, err := r.s.exec(ctx, r.s.db, `INSERT INTO videos (id, user_id, title, video_url, views, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		video.ID, video.UserID, video.Title, video.VideoURL, video.Views, video.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *videoRepo) GetByID(ctx context.Context, id string) (models.Video, error) {
	var v models.Video
	err := r.s.queryRow(ctx, r.s.db, `SELECT id, user_id, title, video_url, views, created_at FROM videos WHERE id = ?`, id).
		Scan(&v.ID, &v.UserID, &v.Title, &v.VideoURL, &v.Views, &v.CreatedAt)
	if err != nil {
		return models.Video{}, notFound(err)
	}

	rows, err := r.s.query(ctx, r.s.db, `SELECT user_id, reaction FROM video_reactions WHERE video_id = ? ORDER BY user_id`, id)
	if err != nil {
		return models.Video{}, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	v.Likes, v.Dislikes = []string{}, []string{}
	for rows.Next() {
		var userID string
		var reaction models.Reaction
		if err := rows.Scan(&userID, &reaction); err != nil {
			return models.Video{}, err
		}
		if reaction == models.ReactionLike {
			v.Likes = append(v.Likes, userID)
		} else {
			v.Dislikes = append(v.Dislikes, userID)
		}
	}
	return v, rows.Err()
}

// SetReaction upserts the single reaction row of (videoID, userID), which
// keeps the like and dislike sets disjoint.
func (r *videoRepo) SetReaction(ctx context.Context, videoID, userID string, reaction models.Reaction) error {
	ok, err := r.s.exists(ctx, "videos", videoID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrNotFound
	}
	_, err = r.s.exec(ctx, r.s.db, `INSERT INTO video_reactions (video_id, user_id, reaction) VALUES (?, ?, ?)
		ON CONFLICT (video_id, user_id) DO UPDATE SET reaction = excluded.reaction`,
		videoID, userID, string(reaction))
	if err != nil {
		return fmt.Errorf("set reaction: %w", err)
	}
	return nil
}
