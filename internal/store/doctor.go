package store

import (
	"context"

	"clinic-management-api/internal/model"
)

const doctorSelect = `SELECT d.id, d.user_id, d.specialization, d.schedule, u.full_name, u.username, u.is_active, d.created_at, d.updated_at
	FROM doctors d JOIN users u ON u.id = d.user_id`

func scanDoctor(r row) (*model.Doctor, error) {
	d := &model.Doctor{}
	err := r.Scan(&d.ID, &d.UserID, &d.Specialization, &d.Schedule, &d.FullName, &d.Username, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

func (s *Store) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO doctors (user_id, specialization, schedule)
		 VALUES ($1,$2,$3)
		 RETURNING id, created_at, updated_at`,
		d.UserID, d.Specialization, d.Schedule,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapErr(err)
}

func (s *Store) DoctorByID(ctx context.Context, id int64) (*model.Doctor, error) {
	return scanDoctor(s.pool.QueryRow(ctx, doctorSelect+` WHERE d.id = $1`, id))
}

func (s *Store) DoctorByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	return scanDoctor(s.pool.QueryRow(ctx, doctorSelect+` WHERE d.user_id = $1`, userID))
}

func (s *Store) ListDoctors(ctx context.Context, pg model.Page) ([]model.Doctor, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, doctorSelect+` ORDER BY d.id LIMIT $1 OFFSET $2`, pg.Limit, pg.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateDoctor(ctx context.Context, id int64, p model.DoctorPatch) (*model.Doctor, error) {
	set := &setList{}
	if p.Specialization != nil {
		set.add("specialization", *p.Specialization)
	}
	if p.Schedule != nil {
		set.add("schedule", *p.Schedule)
	}
	q, args := set.update("doctors", id, "id")
	var got int64
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&got); err != nil {
		return nil, mapErr(err)
	}
	return s.DoctorByID(ctx, got)
}

func (s *Store) DeleteDoctor(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CountRecordsByDoctor(ctx context.Context, doctorID int64) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM medical_records WHERE doctor_id = $1`, doctorID)
}

// DoctorPatients lists every patient with at least one visit record by the doctor.
func (s *Store) DoctorPatients(ctx context.Context, doctorID int64) ([]model.Patient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients
		 WHERE id IN (SELECT patient_id FROM medical_records WHERE doctor_id = $1)
		 ORDER BY id`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
