package sqlstore

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/database"
	"github.com/isdelr/mediaverse-be/internal/models"
)

const userColumns = `id, name, email, password_hash, avatar, verified, admin, editor, from_google,
	score, subscribers, status, level, created_at, updated_at`

type userRepo struct{ s *Store }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar, &u.Verified, &u.Admin,
		&u.Editor, &u.FromGoogle, &u.Score, &u.Subscribers, &u.Status, &u.Level, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	_, err := r.s.exec(ctx, r.s.db, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Avatar, user.Verified, user.Admin,
		user.Editor, user.FromGoogle, user.Score, user.Subscribers, user.Status, user.Level,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) get(ctx context.Context, where string, arg any) (models.User, error) {
	u, err := scanUser(r.s.queryRow(ctx, r.s.db, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		return models.User{}, notFound(err)
	}
	subs, err := r.subscriptions(ctx, []string{u.ID})
	if err != nil {
		return models.User{}, err
	}
	u.SubscribedUsers = subs[u.ID]
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.get(ctx, "LOWER(email) = LOWER(?)", email)
}

// subscriptions loads the subscription sets of the given users in the order
// they were added.
func (r *userRepo) subscriptions(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.s.query(ctx, r.s.db, `SELECT user_id, target_id FROM subscriptions
		WHERE user_id IN (`+placeholders(len(ids))+`) ORDER BY created_at, target_id`, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, targetID string
		if err := rows.Scan(&userID, &targetID); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], targetID)
	}
	return out, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, user models.User) error {
	res, err := r.s.exec(ctx, r.s.db, `UPDATE users SET name = ?, email = ?, password_hash = ?, avatar = ?,
		verified = ?, admin = ?, editor = ?, from_google = ?, score = ?, status = ?, level = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.Email, user.PasswordHash, user.Avatar, user.Verified, user.Admin, user.Editor,
		user.FromGoogle, user.Score, user.Status, user.Level, user.UpdatedAt.UTC(), user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	return affected(res)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.s.db, func(ctx context.Context, tx database.DBTX) error {
		if _, err := r.s.exec(ctx, tx, `DELETE FROM subscriptions WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("delete subscriptions: %w", err)
		}
		res, err := r.s.exec(ctx, tx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return affected(res)
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func emailFilter(filter models.UserFilter) (string, []any) {
	if filter.EmailContains == "" {
		return "", nil
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.EmailContains)) + "%"
	return ` WHERE LOWER(email) LIKE ? ESCAPE '\'`, []any{pattern}
}

func (r *userRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	where, args := emailFilter(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.s.query(ctx, r.s.db, `SELECT `+userColumns+` FROM users`+where+
		` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subs, err := r.subscriptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].SubscribedUsers = subs[users[i].ID]
	}
	return users, nil
}

func (r *userRepo) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	where, args := emailFilter(filter)
	var n int64
	if err := r.s.queryRow(ctx, r.s.db, `SELECT COUNT(*) FROM users`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepo) mustExist(ctx context.Context, id string) error {
	ok, err := r.s.exists(ctx, "users", id)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrNotFound
	}
	return nil
}

func (r *userRepo) AddSubscription(ctx context.Context, userID, targetID string) (bool, error) {
	if err := r.mustExist(ctx, userID); err != nil {
		return false, err
	}
	res, err := r.s.exec(ctx, r.s.db, `INSERT INTO subscriptions (user_id, target_id, created_at)
		VALUES (?, ?, ?) ON CONFLICT (user_id, target_id) DO NOTHING`, userID, targetID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("add subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepo) RemoveSubscription(ctx context.Context, userID, targetID string) (bool, error) {
	if err := r.mustExist(ctx, userID); err != nil {
		return false, err
	}
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM subscriptions WHERE user_id = ? AND target_id = ?`, userID, targetID)
	if err != nil {
		return false, fmt.Errorf("remove subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepo) RemoveSubscriber(ctx context.Context, targetID string) (int64, error) {
	res, err := r.s.exec(ctx, r.s.db, `DELETE FROM subscriptions WHERE target_id = ?`, targetID)
	if err != nil {
		return 0, fmt.Errorf("remove subscriber: %w", err)
	}
	return res.RowsAffected()
}

func (r *userRepo) AdjustSubscribers(ctx context.Context, userID string, delta int) error {
	res, err := r.s.exec(ctx, r.s.db, `UPDATE users
		SET subscribers = CASE WHEN subscribers + ? < 0 THEN 0 ELSE subscribers + ? END
		WHERE id = ?`, delta, delta, userID)
	if err != nil {
		return fmt.Errorf("adjust subscribers: %w", err)
	}
	return affected(res)
}
