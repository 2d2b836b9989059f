package service

import (
	"context"
	"errors"
	"time"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/auth"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

// errBadCredentials never says which of username or password was wrong.
var errBadCredentials = apperr.Unauthorizedf("invalid username or password")

// dummyHash keeps the cost of a login for an unknown username close to the
// cost of a wrong password.
var dummyHash, _ = auth.HashPassword("not-a-real-password")

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repo.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		auth.CheckPassword(dummyHash, password)
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) || !u.IsActive {
		s.log.Warn().Str("username", username).Msg("login rejected")
		return nil, errBadCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", u.ID).Msg("login")
	return &Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
		User:      u,
	}, nil
}

// Authenticate verifies a session token and re-reads the account it names.
// A valid token for a deleted or deactivated account is rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	c, err := s.tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpired):
			return nil, apperr.Unauthorizedf("token expired")
		case errors.Is(err, auth.ErrBadSignature):
			return nil, apperr.Unauthorizedf("invalid token signature")
		default:
			return nil, apperr.Unauthorizedf("malformed token")
		}
	}

	u, err := s.repo.UserByID(ctx, c.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorizedf("account inactive or missing")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.Unauthorizedf("account inactive or missing")
	}
	return u, nil
}
