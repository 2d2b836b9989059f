package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// DuplicateError is a unique_violation reported by postgres. It is what a
// caller sees when two concurrent creates both pass the pre-check.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate key violates " + e.Constraint
}

// ForeignKeyError is a foreign_key_violation: a referenced row vanished
// between the existence check and the write, or a delete hit a dependent.
type ForeignKeyError struct {
	Constraint string
}

func (e *ForeignKeyError) Error() string {
	return "foreign key violation on " + e.Constraint
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// mapErr converts driver errors into the store's own error values.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &DuplicateError{Constraint: pgErr.ConstraintName}
		case "23503":
			return &ForeignKeyError{Constraint: pgErr.ConstraintName}
		}
	}
	return err
}

// touch keeps updated_at strictly increasing even when two updates land in
// the same microsecond.
const touch = `updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')`

// setList builds the SET clause of a partial update.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

// update renders "UPDATE table SET ..., updated_at = ... WHERE id = $n RETURNING cols".
func (s *setList) update(table string, id int64, returning string) (string, []any) {
	cols := append(append([]string(nil), s.cols...), touch)
	args := append(append([]any(nil), s.args...), id)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		table, strings.Join(cols, ", "), len(args), returning)
	return q, args
}

// where accumulates AND-ed predicates with positional args.
type where struct {
	preds []string
	args  []any
}

func (w *where) add(pred string, v any) {
	w.args = append(w.args, v)
	w.preds = append(w.preds, strings.ReplaceAll(pred, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) String() string {
	if len(w.preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.preds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause.
func (w *where) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func (s *Store) exists(ctx context.Context, q string, args ...any) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(`+q+`)`, args...).Scan(&ok)
	return ok, err
}

func (s *Store) count(ctx context.Context, q string, args ...any) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, q, args...).Scan(&n)
	return n, err
}
