package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

type CreateRecordInput struct {
	PatientID    int64
	DoctorID     int64
	VisitDate    time.Time
	Diagnosis    string
	Prescription string
	Notes        *string
}

// checkRefs verifies the patient and doctor a record points at.
func (s *Service) checkRefs(ctx context.Context, patientID, doctorID *int64) error {
	if patientID != nil {
		p, err := s.repo.PatientByID(ctx, *patientID)
		if _, err = mustExist(p, err, "patient", *patientID); err != nil {
			return err
		}
	}
	if doctorID != nil {
		d, err := s.repo.DoctorByID(ctx, *doctorID)
		if _, err = mustExist(d, err, "doctor", *doctorID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) CreateRecord(ctx context.Context, in CreateRecordInput) (*model.MedicalRecord, error) {
	if strings.TrimSpace(in.Diagnosis) == "" {
		return nil, apperr.Invalidf("diagnosis is required")
	}
	if err := s.checkRefs(ctx, &in.PatientID, &in.DoctorID); err != nil {
		return nil, err
	}
	if in.VisitDate.IsZero() {
		in.VisitDate = s.now()
	}

	m := &model.MedicalRecord{
		PatientID:    in.PatientID,
		DoctorID:     in.DoctorID,
		VisitDate:    in.VisitDate,
		Diagnosis:    in.Diagnosis,
		Prescription: in.Prescription,
		Notes:        in.Notes,
	}
	if err := s.repo.CreateRecord(ctx, m); err != nil {
		return nil, writeErr(err, "medical record", "id", "")
	}
	// re-read for the joined patient and doctor names
	out, err := s.repo.RecordByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListRecords(ctx context.Context, f model.RecordFilter) (model.List[model.MedicalRecord], error) {
	f.Page = page(f.Page)
	rows, total, err := s.repo.ListRecords(ctx, f)
	if err != nil {
		return model.List[model.MedicalRecord]{}, err
	}
	return model.NewList(rows, total, f.Page), nil
}

func (s *Service) GetRecord(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	return absent(s.repo.RecordByID(ctx, id))
}

func (s *Service) UpdateRecord(ctx context.Context, id int64, p model.MedicalRecordPatch) (*model.MedicalRecord, error) {
	cur, err := s.repo.RecordByID(ctx, id)
	if _, err = mustExist(cur, err, "medical record", id); err != nil {
		return nil, err
	}
	if p.Diagnosis != nil && strings.TrimSpace(*p.Diagnosis) == "" {
		return nil, apperr.Invalidf("diagnosis cannot be empty")
	}
	if p.VisitDate != nil && p.VisitDate.IsZero() {
		return nil, apperr.Invalidf("visit_date cannot be empty")
	}
	if err := s.checkRefs(ctx, p.PatientID, p.DoctorID); err != nil {
		return nil, err
	}

	out, err := s.repo.UpdateRecord(ctx, id, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("medical record", id)
		}
		return nil, writeErr(err, "medical record", "id", "")
	}
	return out, nil
}

// DeleteRecord refuses while payments still reference the record.
func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	m, err := s.repo.RecordByID(ctx, id)
	if _, err = mustExist(m, err, "medical record", id); err != nil {
		return err
	}
	n, err := s.repo.CountPaymentsByRecord(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.HasDependents("medical record", id, "payments")
	}

	ok, err := s.repo.DeleteRecord(ctx, id)
	if err != nil {
		var fk *store.ForeignKeyError
		if errors.As(err, &fk) {
			return apperr.HasDependents("medical record", id, "payments")
		}
		return err
	}
	if !ok {
		return apperr.NotFoundf("medical record", id)
	}
	return nil
}

// PatientHistory is every visit of the patient, newest first.
func (s *Service) PatientHistory(ctx context.Context, patientID int64) ([]model.MedicalRecord, error) {
	if err := s.checkRefs(ctx, &patientID, nil); err != nil {
		return nil, err
	}
	out, err := s.repo.RecordsByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.MedicalRecord{}
	}
	return out, nil
}

// TodaysRecords returns visits dated today in the service location. When
// doctorUserID is set only that account's doctor profile is considered; an
// account without a profile yields an empty list.
func (s *Service) TodaysRecords(ctx context.Context, doctorUserID *int64) ([]model.MedicalRecord, error) {
	var doctorID *int64
	if doctorUserID != nil {
		d, err := s.repo.DoctorByUserID(ctx, *doctorUserID)
		if errors.Is(err, store.ErrNotFound) {
			return []model.MedicalRecord{}, nil
		}
		if err != nil {
			return nil, err
		}
		doctorID = &d.ID
	}

	w := s.windows()
	out, err := s.repo.RecordsBetween(ctx, w.today, w.today.AddDate(0, 0, 1), doctorID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.MedicalRecord{}
	}
	return out, nil
}
