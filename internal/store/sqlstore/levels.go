package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/mediaverse-be/internal/models"
)

type levelRepo struct{ s *Store }

func (r *levelRepo) List(ctx context.Context) ([]models.Level, error) {
	rows, err := r.s.query(ctx, r.s.db, `SELECT name, threshold_score FROM levels ORDER BY threshold_score, name`)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	levels := []models.Level{}
	for rows.Next() {
		var l models.Level
		if err := rows.Scan(&l.Name, &l.ThresholdScore); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = newID()
	}
	_, err := r.s.exec(ctx, r.s.db, `INSERT INTO events (id, type, level, message, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepo) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	events := []models.Event{}
	if limit <= 0 {
		return events, nil
	}
	rows, err := r.s.query(ctx, r.s.db, `SELECT id, type, level, message, user_id, created_at FROM events
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Event
		var userID sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.Level, &e.Message, &userID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			e.UserID = &userID.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
