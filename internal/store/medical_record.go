package store

import (
	"context"
	"time"

	"clinic-management-api/internal/model"
)

const recordSelect = `SELECT r.id, r.patient_id, r.doctor_id, r.visit_date, r.diagnosis, r.prescription, r.notes,
	p.full_name, u.full_name, r.created_at, r.updated_at
	FROM medical_records r
	JOIN patients p ON p.id = r.patient_id
	JOIN doctors d ON d.id = r.doctor_id
	JOIN users u ON u.id = d.user_id`

func scanRecord(r row) (*model.MedicalRecord, error) {
	m := &model.MedicalRecord{}
	err := r.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.VisitDate, &m.Diagnosis, &m.Prescription, &m.Notes,
		&m.PatientName, &m.DoctorName, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (s *Store) queryRecords(ctx context.Context, q string, args ...any) ([]model.MedicalRecord, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) CreateRecord(ctx context.Context, m *model.MedicalRecord) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO medical_records (patient_id, doctor_id, visit_date, diagnosis, prescription, notes)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, created_at, updated_at`,
		m.PatientID, m.DoctorID, m.VisitDate, m.Diagnosis, m.Prescription, m.Notes,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapErr(err)
}

func (s *Store) RecordByID(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	return scanRecord(s.pool.QueryRow(ctx, recordSelect+` WHERE r.id = $1`, id))
}

func (s *Store) ListRecords(ctx context.Context, f model.RecordFilter) ([]model.MedicalRecord, int, error) {
	w := &where{}
	if f.PatientID != nil {
		w.add("r.patient_id = ?", *f.PatientID)
	}
	if f.DoctorID != nil {
		w.add("r.doctor_id = ?", *f.DoctorID)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records r`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := recordSelect + w.String() + ` ORDER BY r.visit_date DESC, r.id DESC` + w.page(f.Limit, f.Offset)
	out, err := s.queryRecords(ctx, q, w.args...)
	return out, total, err
}

// RecordsByPatient is the full visit history, newest first.
func (s *Store) RecordsByPatient(ctx context.Context, patientID int64) ([]model.MedicalRecord, error) {
	return s.queryRecords(ctx, recordSelect+` WHERE r.patient_id = $1 ORDER BY r.visit_date DESC, r.id DESC`, patientID)
}

// RecordsBetween returns visits in [from, to), optionally for one doctor, earliest first.
func (s *Store) RecordsBetween(ctx context.Context, from, to time.Time, doctorID *int64) ([]model.MedicalRecord, error) {
	w := &where{}
	w.add("r.visit_date >= ?", from)
	w.add("r.visit_date < ?", to)
	if doctorID != nil {
		w.add("r.doctor_id = ?", *doctorID)
	}
	return s.queryRecords(ctx, recordSelect+w.String()+` ORDER BY r.visit_date, r.id`, w.args...)
}

func (s *Store) UpdateRecord(ctx context.Context, id int64, p model.MedicalRecordPatch) (*model.MedicalRecord, error) {
	set := &setList{}
	if p.PatientID != nil {
		set.add("patient_id", *p.PatientID)
	}
	if p.DoctorID != nil {
		set.add("doctor_id", *p.DoctorID)
	}
	if p.VisitDate != nil {
		set.add("visit_date", *p.VisitDate)
	}
	if p.Diagnosis != nil {
		set.add("diagnosis", *p.Diagnosis)
	}
	if p.Prescription != nil {
		set.add("prescription", *p.Prescription)
	}
	if p.Notes != nil {
		set.add("notes", *p.Notes)
	}
	q, args := set.update("medical_records", id, "id")
	var got int64
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&got); err != nil {
		return nil, mapErr(err)
	}
	return s.RecordByID(ctx, got)
}

func (s *Store) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CountPaymentsByRecord(ctx context.Context, recordID int64) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM payments WHERE medical_record_id = $1`, recordID)
}

// CountRecords counts visits dated at or after since, optionally for one doctor.
func (s *Store) CountRecords(ctx context.Context, since time.Time, doctorID *int64) (int64, error) {
	w := &where{}
	if !since.IsZero() {
		w.add("visit_date >= ?", since)
	}
	if doctorID != nil {
		w.add("doctor_id = ?", *doctorID)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM medical_records`+w.String(), w.args...)
}

func (s *Store) RecentRecords(ctx context.Context, n int) ([]model.MedicalRecord, error) {
	return s.queryRecords(ctx, recordSelect+` ORDER BY r.created_at DESC, r.id DESC LIMIT $1`, n)
}
