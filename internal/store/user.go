package store

import (
	"context"

	"clinic-management-api/internal/model"
)

const userCols = `id, username, password_hash, full_name, role, is_active, created_at, updated_at`

type row interface {
	Scan(dest ...any) error
}

func scanUser(r row) (*model.User, error) {
	u := &model.User{}
	err := r.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, role, is_active)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.PasswordHash, u.FullName, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (s *Store) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE username = $1 AND id <> $2`, username, excludeID)
}

func (s *Store) ListUsers(ctx context.Context, f model.UserFilter) ([]model.User, int, error) {
	w := &where{}
	if f.Role != nil {
		w.add("role = ?", *f.Role)
	}
	if f.Active != nil {
		w.add("is_active = ?", *f.Active)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userCols + ` FROM users` + w.String() + ` ORDER BY id`
	q += w.page(f.Limit, f.Offset)
	rows, err := s.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

// UpdateUser writes only the non-nil fields of p.
func (s *Store) UpdateUser(ctx context.Context, id int64, p model.UserPatch) (*model.User, error) {
	set := &setList{}
	if p.Username != nil {
		set.add("username", *p.Username)
	}
	if p.PasswordHash != nil {
		set.add("password_hash", *p.PasswordHash)
	}
	if p.FullName != nil {
		set.add("full_name", *p.FullName)
	}
	if p.Role != nil {
		set.add("role", *p.Role)
	}
	if p.IsActive != nil {
		set.add("is_active", *p.IsActive)
	}
	q, args := set.update("users", id, userCols)
	return scanUser(s.pool.QueryRow(ctx, q, args...))
}

func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CountUsers(ctx context.Context, role *model.Role) (int64, error) {
	if role == nil {
		return s.count(ctx, `SELECT COUNT(*) FROM users`)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, *role)
}
