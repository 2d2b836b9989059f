package service

import (
	"context"
	"errors"
	"strings"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

func (s *Service) CreatePatient(ctx context.Context, p model.Patient) (*model.Patient, error) {
	p.MedicalRecordNo = strings.TrimSpace(p.MedicalRecordNo)
	if p.MedicalRecordNo == "" || strings.TrimSpace(p.FullName) == "" {
		return nil, apperr.Invalidf("medical_record_no and full_name are required")
	}
	if p.DateOfBirth.IsZero() {
		return nil, apperr.Invalidf("date_of_birth is required")
	}
	if p.DateOfBirth.After(s.now()) {
		return nil, apperr.Invalidf("date_of_birth cannot be in the future")
	}

	taken, err := s.repo.RecordNoTaken(ctx, p.MedicalRecordNo, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("patient", "medical_record_no", p.MedicalRecordNo)
	}

	out := p
	out.ID = 0
	if err := s.repo.CreatePatient(ctx, &out); err != nil {
		return nil, writeErr(err, "patient", "medical_record_no", p.MedicalRecordNo)
	}
	return &out, nil
}

func (s *Service) ListPatients(ctx context.Context, pg model.Page) (model.List[model.Patient], error) {
	pg = page(pg)
	rows, total, err := s.repo.ListPatients(ctx, pg)
	if err != nil {
		return model.List[model.Patient]{}, err
	}
	return model.NewList(rows, total, pg), nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	return absent(s.repo.PatientByID(ctx, id))
}

// SearchPatients matches the query case-insensitively against name, phone
// and record number. Results are ordered by id.
func (s *Service) SearchPatients(ctx context.Context, query string, pg model.Page) (model.List[model.Patient], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.List[model.Patient]{}, apperr.Invalidf("search query is required")
	}
	pg = page(pg)
	rows, total, err := s.repo.SearchPatients(ctx, query, pg)
	if err != nil {
		return model.List[model.Patient]{}, err
	}
	return model.NewList(rows, total, pg), nil
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, p model.PatientPatch) (*model.Patient, error) {
	cur, err := s.repo.PatientByID(ctx, id)
	if cur, err = mustExist(cur, err, "patient", id); err != nil {
		return nil, err
	}

	if p.MedicalRecordNo != nil {
		no := strings.TrimSpace(*p.MedicalRecordNo)
		if no == "" {
			return nil, apperr.Invalidf("medical_record_no cannot be empty")
		}
		p.MedicalRecordNo = &no
		if no != cur.MedicalRecordNo {
			taken, err := s.repo.RecordNoTaken(ctx, no, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Duplicate("patient", "medical_record_no", no)
			}
		}
	}
	if p.FullName != nil && strings.TrimSpace(*p.FullName) == "" {
		return nil, apperr.Invalidf("full_name cannot be empty")
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(s.now()) {
		return nil, apperr.Invalidf("date_of_birth cannot be in the future")
	}

	out, err := s.repo.UpdatePatient(ctx, id, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("patient", id)
		}
		value := cur.MedicalRecordNo
		if p.MedicalRecordNo != nil {
			value = *p.MedicalRecordNo
		}
		return nil, writeErr(err, "patient", "medical_record_no", value)
	}
	return out, nil
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	ok, err := s.repo.DeletePatient(ctx, id)
	if err != nil {
		var fk *store.ForeignKeyError
		if errors.As(err, &fk) {
			return apperr.HasDependents("patient", id, "medical records or payments")
		}
		return err
	}
	if !ok {
		return apperr.NotFoundf("patient", id)
	}
	return nil
}
