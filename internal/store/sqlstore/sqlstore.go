// Package sqlstore implements store.Store on database/sql. The same queries
// serve SQLite (modernc.org/sqlite) and PostgreSQL (pgx); they are written
// with '?' placeholders and rebound for PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/isdelr/mediaverse-be/internal/database"
	"github.com/isdelr/mediaverse-be/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is a SQL-backed store.Store.
type Store struct {
	db       *sql.DB
	postgres bool
}

var _ store.Store = (*Store)(nil)

// New wraps an already migrated database. driver is database.SQLite or
// database.Postgres.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, postgres: driver == database.Postgres}
}

func (s *Store) Users() store.UserRepository       { return &userRepo{s} }
func (s *Store) Posts() store.PostRepository       { return &postRepo{s} }
func (s *Store) Comments() store.CommentRepository { return &commentRepo{s} }
func (s *Store) Videos() store.VideoRepository     { return &videoRepo{s} }
func (s *Store) Levels() store.LevelRepository     { return &levelRepo{s} }
func (s *Store) Events() store.EventRepository     { return &eventRepo{s} }

// Close closes the underlying pool.
func (s *Store) Close(context.Context) error { return s.db.Close() }

// rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q database.DBTX, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, q database.DBTX, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, q database.DBTX, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

// exists reports whether a row with id is present in table.
func (s *Store) exists(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := s.queryRow(ctx, s.db, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func newID() string { return uuid.NewString() }

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFound maps sql.ErrNoRows to common.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return err
}

// affected turns a zero-row result into common.ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
