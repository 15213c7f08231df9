package sqlstore

import (
	"context"
	"fmt"

	"github.com/isdelr/mediaverse-be/internal/models"
)

type postRepo struct{ s *Store }

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	_, err := r.s.exec(ctx, r.s.db, `INSERT INTO posts (id, user_id, title, slug, caption, photo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.UserID, post.Title, post.Slug, post.Caption, post.Photo, post.CreatedAt.UTC(), post.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

const postColumns = `id, user_id, title, slug, caption, photo, created_at, updated_at`

func scanPost(row rowScanner) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Slug, &p.Caption, &p.Photo, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *postRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.s.queryRow(ctx, r.s.db, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return models.Post{}, notFound(err)
	}
	return p, nil
}

func (r *postRepo) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	rows, err := r.s.query(ctx, r.s.db, `SELECT `+postColumns+` FROM posts WHERE user_id = ?
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM posts WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	return res.RowsAffected()
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = newID()
	}
	_, err := r.s.exec(ctx, r.s.db, `INSERT INTO comments (id, post_id, user_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.PostID, comment.UserID, comment.Desc, comment.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := r.s.query(ctx, r.s.db, `SELECT id, post_id, user_id, body, created_at FROM comments
		WHERE post_id = ? ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Desc, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepo) DeleteByPostIDs(ctx context.Context, postIDs []string) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM comments WHERE post_id IN (`+placeholders(len(postIDs))+`)`,
		stringArgs(postIDs)...)
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return res.RowsAffected()
}
