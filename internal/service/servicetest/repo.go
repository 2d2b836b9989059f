// Package servicetest provides an in-memory service.Repository with the
// same observable behavior as the postgres store: store.ErrNotFound for
// missing rows, *store.DuplicateError and *store.ForeignKeyError for
// constraint violations, and strictly advancing updated_at.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/service"
	"clinic-management-api/internal/store"
)

var _ service.Repository = (*Repo)(nil)

type Repo struct {
	mu     sync.Mutex
	clock  func() time.Time
	last   time.Time
	nextID int64

	users    map[int64]*model.User
	patients map[int64]*model.Patient
	doctors  map[int64]*model.Doctor
	records  map[int64]*model.MedicalRecord
	payments map[int64]*model.Payment
}

func New() *Repo {
	return &Repo{
		clock:    time.Now,
		users:    map[int64]*model.User{},
		patients: map[int64]*model.Patient{},
		doctors:  map[int64]*model.Doctor{},
		records:  map[int64]*model.MedicalRecord{},
		payments: map[int64]*model.Payment{},
	}
}

// SetClock replaces the source of created_at/updated_at values.
func (r *Repo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = now
}

// tick returns the clock reading, bumped past the previous one if needed.
func (r *Repo) tick() time.Time {
	t := r.clock()
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

func (r *Repo) id() int64 {
	r.nextID++
	return r.nextID
}

func window[T any](xs []T, pg model.Page) []T {
	if pg.Offset >= len(xs) {
		return nil
	}
	xs = xs[pg.Offset:]
	if pg.Limit > 0 && pg.Limit < len(xs) {
		xs = xs[:pg.Limit]
	}
	return xs
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// users

func (r *Repo) CreateUser(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Username == u.Username {
			return &store.DuplicateError{Constraint: "users_username_key"}
		}
	}
	u.ID = r.id()
	u.CreatedAt = r.tick()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *Repo) UserByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Repo) UserByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Repo) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) ListUsers(_ context.Context, f model.UserFilter) ([]model.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.User
	for _, id := range sortedIDs(r.users) {
		u := r.users[id]
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		all = append(all, *u)
	}
	return window(all, f.Page), len(all), nil
}

func (r *Repo) UpdateUser(_ context.Context, id int64, p model.UserPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Username != nil {
		for _, x := range r.users {
			if x.ID != id && x.Username == *p.Username {
				return nil, &store.DuplicateError{Constraint: "users_username_key"}
			}
		}
		u.Username = *p.Username
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	u.UpdatedAt = r.tick()
	cp := *u
	return &cp, nil
}

// DeleteUser cascades to the doctor profile like the schema does, and
// refuses while payments or visit records would be orphaned.
func (r *Repo) DeleteUser(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	for _, pm := range r.payments {
		if pm.CashierID == id {
			return false, &store.ForeignKeyError{Constraint: "payments_cashier_id_fkey"}
		}
	}
	for did, d := range r.doctors {
		if d.UserID != id {
			continue
		}
		for _, m := range r.records {
			if m.DoctorID == did {
				return false, &store.ForeignKeyError{Constraint: "medical_records_doctor_id_fkey"}
			}
		}
		delete(r.doctors, did)
	}
	delete(r.users, id)
	return true, nil
}

func (r *Repo) CountUsers(_ context.Context, role *model.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if role == nil || u.Role == *role {
			n++
		}
	}
	return n, nil
}

// patients

func (r *Repo) CreatePatient(_ context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.patients {
		if x.MedicalRecordNo == p.MedicalRecordNo {
			return &store.DuplicateError{Constraint: "patients_medical_record_no_key"}
		}
	}
	p.ID = r.id()
	p.CreatedAt = r.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *Repo) PatientByID(_ context.Context, id int64) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Repo) RecordNoTaken(_ context.Context, recordNo string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.MedicalRecordNo == recordNo && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) allPatients(match func(*model.Patient) bool) []model.Patient {
	var out []model.Patient
	for _, id := range sortedIDs(r.patients) {
		if p := r.patients[id]; match == nil || match(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (r *Repo) ListPatients(_ context.Context, pg model.Page) ([]model.Patient, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.allPatients(nil)
	return window(all, pg), len(all), nil
}

func (r *Repo) SearchPatients(_ context.Context, query string, pg model.Page) ([]model.Patient, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	all := r.allPatients(func(p *model.Patient) bool {
		return strings.Contains(strings.ToLower(p.FullName), q) ||
			strings.Contains(strings.ToLower(p.Phone), q) ||
			strings.Contains(strings.ToLower(p.MedicalRecordNo), q)
	})
	return window(all, pg), len(all), nil
}

func (r *Repo) UpdatePatient(_ context.Context, id int64, p model.PatientPatch) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.MedicalRecordNo != nil {
		for _, x := range r.patients {
			if x.ID != id && x.MedicalRecordNo == *p.MedicalRecordNo {
				return nil, &store.DuplicateError{Constraint: "patients_medical_record_no_key"}
			}
		}
		cur.MedicalRecordNo = *p.MedicalRecordNo
	}
	if p.FullName != nil {
		cur.FullName = *p.FullName
	}
	if p.DateOfBirth != nil {
		cur.DateOfBirth = *p.DateOfBirth
	}
	if p.Gender != nil {
		cur.Gender = *p.Gender
	}
	if p.Phone != nil {
		cur.Phone = *p.Phone
	}
	if p.Address != nil {
		cur.Address = *p.Address
	}
	cur.UpdatedAt = r.tick()
	cp := *cur
	return &cp, nil
}

func (r *Repo) DeletePatient(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return false, nil
	}
	for _, m := range r.records {
		if m.PatientID == id {
			return false, &store.ForeignKeyError{Constraint: "medical_records_patient_id_fkey"}
		}
	}
	for _, pm := range r.payments {
		if pm.PatientID == id {
			return false, &store.ForeignKeyError{Constraint: "payments_patient_id_fkey"}
		}
	}
	delete(r.patients, id)
	return true, nil
}

func (r *Repo) CountPatients(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.patients {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Repo) RecentPatients(_ context.Context, n int) ([]model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.allPatients(nil)
	sort.SliceStable(all, func(i, j int) bool { return newer(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID) })
	return window(all, model.Page{Limit: n}), nil
}

func newer(a time.Time, aid int64, b time.Time, bid int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aid > bid
}

// doctors

func (r *Repo) doctorView(d *model.Doctor) model.Doctor {
	out := *d
	if u, ok := r.users[d.UserID]; ok {
		out.FullName = u.FullName
		out.Username = u.Username
		out.IsActive = u.IsActive
	}
	return out
}

func (r *Repo) CreateDoctor(_ context.Context, d *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[d.UserID]; !ok {
		return &store.ForeignKeyError{Constraint: "doctors_user_id_fkey"}
	}
	for _, x := range r.doctors {
		if x.UserID == d.UserID {
			return &store.DuplicateError{Constraint: "doctors_user_id_key"}
		}
	}
	d.ID = r.id()
	d.CreatedAt = r.tick()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	r.doctors[d.ID] = &cp
	return nil
}

func (r *Repo) DoctorByID(_ context.Context, id int64) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r.doctorView(d)
	return &out, nil
}

func (r *Repo) DoctorByUserID(_ context.Context, userID int64) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.doctors {
		if d.UserID == userID {
			out := r.doctorView(d)
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *Repo) ListDoctors(_ context.Context, pg model.Page) ([]model.Doctor, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.Doctor
	for _, id := range sortedIDs(r.doctors) {
		all = append(all, r.doctorView(r.doctors[id]))
	}
	return window(all, pg), len(all), nil
}

func (r *Repo) UpdateDoctor(_ context.Context, id int64, p model.DoctorPatch) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Specialization != nil {
		d.Specialization = *p.Specialization
	}
	if p.Schedule != nil {
		d.Schedule = *p.Schedule
	}
	d.UpdatedAt = r.tick()
	out := r.doctorView(d)
	return &out, nil
}

func (r *Repo) DeleteDoctor(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return false, nil
	}
	for _, m := range r.records {
		if m.DoctorID == id {
			return false, &store.ForeignKeyError{Constraint: "medical_records_doctor_id_fkey"}
		}
	}
	delete(r.doctors, id)
	return true, nil
}

func (r *Repo) CountRecordsByDoctor(_ context.Context, doctorID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.records {
		if m.DoctorID == doctorID {
			n++
		}
	}
	return n, nil
}

func (r *Repo) DoctorPatients(_ context.Context, doctorID int64) ([]model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]bool{}
	for _, m := range r.records {
		if m.DoctorID == doctorID {
			seen[m.PatientID] = true
		}
	}
	return r.allPatients(func(p *model.Patient) bool { return seen[p.ID] }), nil
}

// medical records

func (r *Repo) recordView(m *model.MedicalRecord) model.MedicalRecord {
	out := *m
	if p, ok := r.patients[m.PatientID]; ok {
		out.PatientName = p.FullName
	}
	if d, ok := r.doctors[m.DoctorID]; ok {
		if u, ok := r.users[d.UserID]; ok {
			out.DoctorName = u.FullName
		}
	}
	return out
}

func (r *Repo) recordsWhere(match func(*model.MedicalRecord) bool) []model.MedicalRecord {
	var out []model.MedicalRecord
	for _, id := range sortedIDs(r.records) {
		if m := r.records[id]; match == nil || match(m) {
			out = append(out, r.recordView(m))
		}
	}
	return out
}

func byVisitDesc(xs []model.MedicalRecord) {
	sort.SliceStable(xs, func(i, j int) bool { return newer(xs[i].VisitDate, xs[i].ID, xs[j].VisitDate, xs[j].ID) })
}

func (r *Repo) CreateRecord(_ context.Context, m *model.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[m.PatientID]; !ok {
		return &store.ForeignKeyError{Constraint: "medical_records_patient_id_fkey"}
	}
	if _, ok := r.doctors[m.DoctorID]; !ok {
		return &store.ForeignKeyError{Constraint: "medical_records_doctor_id_fkey"}
	}
	m.ID = r.id()
	m.CreatedAt = r.tick()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	r.records[m.ID] = &cp
	return nil
}

func (r *Repo) RecordByID(_ context.Context, id int64) (*model.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r.recordView(m)
	return &out, nil
}

func (r *Repo) ListRecords(_ context.Context, f model.RecordFilter) ([]model.MedicalRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.recordsWhere(func(m *model.MedicalRecord) bool {
		return (f.PatientID == nil || m.PatientID == *f.PatientID) &&
			(f.DoctorID == nil || m.DoctorID == *f.DoctorID)
	})
	byVisitDesc(all)
	return window(all, f.Page), len(all), nil
}

func (r *Repo) RecordsByPatient(_ context.Context, patientID int64) ([]model.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.recordsWhere(func(m *model.MedicalRecord) bool { return m.PatientID == patientID })
	byVisitDesc(all)
	return all, nil
}

func (r *Repo) RecordsBetween(_ context.Context, from, to time.Time, doctorID *int64) ([]model.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.recordsWhere(func(m *model.MedicalRecord) bool {
		return !m.VisitDate.Before(from) && m.VisitDate.Before(to) &&
			(doctorID == nil || m.DoctorID == *doctorID)
	})
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].VisitDate.Equal(all[j].VisitDate) {
			return all[i].VisitDate.Before(all[j].VisitDate)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (r *Repo) UpdateRecord(_ context.Context, id int64, p model.MedicalRecordPatch) (*model.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.PatientID != nil {
		if _, ok := r.patients[*p.PatientID]; !ok {
			return nil, &store.ForeignKeyError{Constraint: "medical_records_patient_id_fkey"}
		}
		m.PatientID = *p.PatientID
	}
	if p.DoctorID != nil {
		if _, ok := r.doctors[*p.DoctorID]; !ok {
			return nil, &store.ForeignKeyError{Constraint: "medical_records_doctor_id_fkey"}
		}
		m.DoctorID = *p.DoctorID
	}
	if p.VisitDate != nil {
		m.VisitDate = *p.VisitDate
	}
	if p.Diagnosis != nil {
		m.Diagnosis = *p.Diagnosis
	}
	if p.Prescription != nil {
		m.Prescription = *p.Prescription
	}
	if p.Notes != nil {
		notes := *p.Notes
		m.Notes = &notes
	}
	m.UpdatedAt = r.tick()
	out := r.recordView(m)
	return &out, nil
}

func (r *Repo) DeleteRecord(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	for _, pm := range r.payments {
		if pm.MedicalRecordID != nil && *pm.MedicalRecordID == id {
			return false, &store.ForeignKeyError{Constraint: "payments_medical_record_id_fkey"}
		}
	}
	delete(r.records, id)
	return true, nil
}

func (r *Repo) CountPaymentsByRecord(_ context.Context, recordID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, pm := range r.payments {
		if pm.MedicalRecordID != nil && *pm.MedicalRecordID == recordID {
			n++
		}
	}
	return n, nil
}

func (r *Repo) CountRecords(_ context.Context, since time.Time, doctorID *int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.records {
		if !m.VisitDate.Before(since) && (doctorID == nil || m.DoctorID == *doctorID) {
			n++
		}
	}
	return n, nil
}

func (r *Repo) RecentRecords(_ context.Context, n int) ([]model.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.recordsWhere(nil)
	sort.SliceStable(all, func(i, j int) bool { return newer(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID) })
	return window(all, model.Page{Limit: n}), nil
}

// payments

func (r *Repo) paymentView(pm *model.Payment) model.Payment {
	out := *pm
	if p, ok := r.patients[pm.PatientID]; ok {
		out.PatientName = p.FullName
	}
	if u, ok := r.users[pm.CashierID]; ok {
		out.CashierName = u.FullName
	}
	return out
}

func (r *Repo) paymentsWhere(f model.PaymentFilter) []model.Payment {
	var out []model.Payment
	for _, id := range sortedIDs(r.payments) {
		pm := r.payments[id]
		if f.PatientID != nil && pm.PatientID != *f.PatientID {
			continue
		}
		if f.From != nil && pm.PaymentDate.Before(*f.From) {
			continue
		}
		if f.To != nil && !pm.PaymentDate.Before(*f.To) {
			continue
		}
		out = append(out, r.paymentView(pm))
	}
	return out
}

func (r *Repo) CreatePayment(_ context.Context, pm *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[pm.PatientID]; !ok {
		return &store.ForeignKeyError{Constraint: "payments_patient_id_fkey"}
	}
	if pm.MedicalRecordID != nil {
		if _, ok := r.records[*pm.MedicalRecordID]; !ok {
			return &store.ForeignKeyError{Constraint: "payments_medical_record_id_fkey"}
		}
	}
	if _, ok := r.users[pm.CashierID]; !ok {
		return &store.ForeignKeyError{Constraint: "payments_cashier_id_fkey"}
	}
	for _, x := range r.payments {
		if x.ReceiptNumber == pm.ReceiptNumber {
			return &store.DuplicateError{Constraint: "payments_receipt_number_key"}
		}
	}
	pm.ID = r.id()
	pm.CreatedAt = r.tick()
	pm.UpdatedAt = pm.CreatedAt
	cp := *pm
	r.payments[pm.ID] = &cp
	return nil
}

func (r *Repo) PaymentByID(_ context.Context, id int64) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pm, ok := r.payments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r.paymentView(pm)
	return &out, nil
}

func (r *Repo) ReceiptTaken(_ context.Context, receiptNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pm := range r.payments {
		if pm.ReceiptNumber == receiptNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) ListPayments(_ context.Context, f model.PaymentFilter) ([]model.Payment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.paymentsWhere(f)
	sort.SliceStable(all, func(i, j int) bool { return newer(all[i].PaymentDate, all[i].ID, all[j].PaymentDate, all[j].ID) })
	return window(all, f.Page), len(all), nil
}

func (r *Repo) Receipt(_ context.Context, receiptNo string) (*model.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pm := range r.payments {
		if pm.ReceiptNumber != receiptNo {
			continue
		}
		view := r.paymentView(pm)
		rc := &model.Receipt{Payment: view, PatientName: view.PatientName, CashierName: view.CashierName}
		if p, ok := r.patients[pm.PatientID]; ok {
			rc.PatientRecordNo = p.MedicalRecordNo
		}
		if pm.MedicalRecordID != nil {
			if m, ok := r.records[*pm.MedicalRecordID]; ok {
				rv := r.recordView(m)
				rc.Diagnosis = &rv.Diagnosis
				rc.DoctorName = &rv.DoctorName
				rc.VisitDate = &rv.VisitDate
			}
		}
		return rc, nil
	}
	return nil, store.ErrNotFound
}

func (r *Repo) PaymentStats(_ context.Context, from, to *time.Time) (model.PaymentStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st model.PaymentStatistics
	for _, pm := range r.paymentsWhere(model.PaymentFilter{From: from, To: to}) {
		st.Count++
		st.DoctorServiceFee += pm.DoctorServiceFee
		st.MedicineFee += pm.MedicineFee
		st.TotalRevenue += pm.TotalAmount
	}
	return st, nil
}

func (r *Repo) RecentPayments(_ context.Context, n int) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.paymentsWhere(model.PaymentFilter{})
	sort.SliceStable(all, func(i, j int) bool { return newer(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID) })
	return window(all, model.Page{Limit: n}), nil
}
