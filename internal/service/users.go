package service

import (
	"context"
	"errors"
	"strings"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/auth"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

const minPasswordLen = 6

type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Role     model.Role
	IsActive *bool
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.FullName == "" {
		return nil, apperr.Invalidf("username and full_name are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Invalidf("password must be at least %d characters", minPasswordLen)
	}
	if !in.Role.Valid() {
		return nil, apperr.Invalidf("unknown role %q", in.Role)
	}

	taken, err := s.repo.UsernameTaken(ctx, in.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("user", "username", in.Username)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     true,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, writeErr(err, "user", "username", in.Username)
	}
	s.log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, f model.UserFilter) (model.List[model.User], error) {
	f.Page = page(f.Page)
	users, total, err := s.repo.ListUsers(ctx, f)
	if err != nil {
		return model.List[model.User]{}, err
	}
	return model.NewList(users, total, f.Page), nil
}

// GetUser returns nil, nil when the id does not resolve.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return absent(s.repo.UserByID(ctx, id))
}

func (s *Service) UpdateUser(ctx context.Context, id int64, p model.UserPatch) (*model.User, error) {
	cur, err := s.repo.UserByID(ctx, id)
	if cur, err = mustExist(cur, err, "user", id); err != nil {
		return nil, err
	}

	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if name == "" {
			return nil, apperr.Invalidf("username cannot be empty")
		}
		p.Username = &name
		if name != cur.Username {
			taken, err := s.repo.UsernameTaken(ctx, name, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Duplicate("user", "username", name)
			}
		}
	}
	if p.Role != nil && !p.Role.Valid() {
		return nil, apperr.Invalidf("unknown role %q", *p.Role)
	}
	if p.Password != nil {
		if len(*p.Password) < minPasswordLen {
			return nil, apperr.Invalidf("password must be at least %d characters", minPasswordLen)
		}
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = &hash
		p.Password = nil
	}

	u, err := s.repo.UpdateUser(ctx, id, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("user", id)
		}
		value := cur.Username
		if p.Username != nil {
			value = *p.Username
		}
		return nil, writeErr(err, "user", "username", value)
	}
	return u, nil
}

// DeleteUser removes the account. Rows that still point at it (payments it
// collected, a doctor profile with visits) make postgres refuse, which
// surfaces as a Conflict.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		var fk *store.ForeignKeyError
		if errors.As(err, &fk) {
			return apperr.HasDependents("user", id, "payments or medical records")
		}
		return err
	}
	if !ok {
		return apperr.NotFoundf("user", id)
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
