package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

type CreateDoctorInput struct {
	UserID         int64
	Specialization string
	Schedule       string
}

// validSchedule accepts an empty schedule or any JSON document.
func validSchedule(s string) bool {
	return strings.TrimSpace(s) == "" || json.Valid([]byte(s))
}

// CreateDoctor attaches a profile to an existing doctor account. An account
// holds at most one profile.
func (s *Service) CreateDoctor(ctx context.Context, in CreateDoctorInput) (*model.Doctor, error) {
	if strings.TrimSpace(in.Specialization) == "" {
		return nil, apperr.Invalidf("specialization is required")
	}
	if !validSchedule(in.Schedule) {
		return nil, apperr.Invalidf("schedule must be valid JSON")
	}

	u, err := s.repo.UserByID(ctx, in.UserID)
	if u, err = mustExist(u, err, "user", in.UserID); err != nil {
		return nil, err
	}
	if u.Role != model.RoleDoctor {
		return nil, apperr.Invalidf("user %d has role %s, expected %s", u.ID, u.Role, model.RoleDoctor)
	}

	if _, err := s.repo.DoctorByUserID(ctx, in.UserID); err == nil {
		return nil, apperr.Duplicate("doctor", "user_id", strconv.FormatInt(in.UserID, 10))
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	d := &model.Doctor{
		UserID:         in.UserID,
		Specialization: in.Specialization,
		Schedule:       in.Schedule,
	}
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return nil, apperr.Duplicate("doctor", "user_id", strconv.FormatInt(in.UserID, 10))
		}
		return nil, writeErr(err, "doctor", "user_id", "")
	}
	d.FullName = u.FullName
	d.Username = u.Username
	d.IsActive = u.IsActive
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context, pg model.Page) (model.List[model.Doctor], error) {
	pg = page(pg)
	rows, total, err := s.repo.ListDoctors(ctx, pg)
	if err != nil {
		return model.List[model.Doctor]{}, err
	}
	return model.NewList(rows, total, pg), nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	return absent(s.repo.DoctorByID(ctx, id))
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, p model.DoctorPatch) (*model.Doctor, error) {
	if p.Specialization != nil && strings.TrimSpace(*p.Specialization) == "" {
		return nil, apperr.Invalidf("specialization cannot be empty")
	}
	if p.Schedule != nil && !validSchedule(*p.Schedule) {
		return nil, apperr.Invalidf("schedule must be valid JSON")
	}
	d, err := s.repo.UpdateDoctor(ctx, id, p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf("doctor", id)
	}
	return d, err
}

// DeleteDoctor refuses while visit records still reference the profile.
func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	d, err := s.repo.DoctorByID(ctx, id)
	if _, err = mustExist(d, err, "doctor", id); err != nil {
		return err
	}
	n, err := s.repo.CountRecordsByDoctor(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.HasDependents("doctor", id, "medical records")
	}

	ok, err := s.repo.DeleteDoctor(ctx, id)
	if err != nil {
		var fk *store.ForeignKeyError
		if errors.As(err, &fk) {
			return apperr.HasDependents("doctor", id, "medical records")
		}
		return err
	}
	if !ok {
		return apperr.NotFoundf("doctor", id)
	}
	return nil
}

// DoctorPatients lists the distinct patients the doctor has seen.
func (s *Service) DoctorPatients(ctx context.Context, doctorID int64) ([]model.Patient, error) {
	d, err := s.repo.DoctorByID(ctx, doctorID)
	if _, err = mustExist(d, err, "doctor", doctorID); err != nil {
		return nil, err
	}
	out, err := s.repo.DoctorPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Patient{}
	}
	return out, nil
}
