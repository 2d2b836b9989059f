package store

import (
	"context"
	"strings"
	"time"

	"clinic-management-api/internal/model"
)

const patientCols = `id, medical_record_no, full_name, date_of_birth, gender, phone, address, created_at, updated_at`

func scanPatient(r row) (*model.Patient, error) {
	p := &model.Patient{}
	var dob time.Time
	err := r.Scan(&p.ID, &p.MedicalRecordNo, &p.FullName, &dob, &p.Gender, &p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	p.DateOfBirth = model.NewDate(dob)
	return p, nil
}

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO patients (medical_record_no, full_name, date_of_birth, gender, phone, address)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, created_at, updated_at`,
		p.MedicalRecordNo, p.FullName, p.DateOfBirth.Time, p.Gender, p.Phone, p.Address,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

func (s *Store) PatientByID(ctx context.Context, id int64) (*model.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (s *Store) RecordNoTaken(ctx context.Context, recordNo string, excludeID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM patients WHERE medical_record_no = $1 AND id <> $2`, recordNo, excludeID)
}

func (s *Store) ListPatients(ctx context.Context, pg model.Page) ([]model.Patient, int, error) {
	return s.listPatients(ctx, &where{}, pg)
}

// SearchPatients matches name, phone or record number, case-insensitively.
func (s *Store) SearchPatients(ctx context.Context, query string, pg model.Page) ([]model.Patient, int, error) {
	w := &where{}
	w.add(`(full_name ILIKE ? OR phone ILIKE ? OR medical_record_no ILIKE ?)`, "%"+escapeLike(query)+"%")
	return s.listPatients(ctx, w, pg)
}

func (s *Store) listPatients(ctx context.Context, w *where, pg model.Page) ([]model.Patient, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + patientCols + ` FROM patients` + w.String() + ` ORDER BY id`
	q += w.page(pg.Limit, pg.Offset)
	rows, err := s.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdatePatient(ctx context.Context, id int64, p model.PatientPatch) (*model.Patient, error) {
	set := &setList{}
	if p.MedicalRecordNo != nil {
		set.add("medical_record_no", *p.MedicalRecordNo)
	}
	if p.FullName != nil {
		set.add("full_name", *p.FullName)
	}
	if p.DateOfBirth != nil {
		set.add("date_of_birth", p.DateOfBirth.Time)
	}
	if p.Gender != nil {
		set.add("gender", *p.Gender)
	}
	if p.Phone != nil {
		set.add("phone", *p.Phone)
	}
	if p.Address != nil {
		set.add("address", *p.Address)
	}
	q, args := set.update("patients", id, patientCols)
	return scanPatient(s.pool.QueryRow(ctx, q, args...))
}

func (s *Store) DeletePatient(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountPatients counts patients created at or after since; the zero time counts all.
func (s *Store) CountPatients(ctx context.Context, since time.Time) (int64, error) {
	if since.IsZero() {
		return s.count(ctx, `SELECT COUNT(*) FROM patients`)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM patients WHERE created_at >= $1`, since)
}

func (s *Store) RecentPatients(ctx context.Context, n int) ([]model.Patient, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC, id DESC LIMIT $1`, n)
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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
