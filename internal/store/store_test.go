package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := store.NewMigrator(pool).Up(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store.New(pool)
}

func suffix() string { return uuid.New().String()[:8] }

func createUser(t *testing.T, st *store.Store, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Username:     "user-" + suffix(),
		PasswordHash: "x",
		FullName:     "Test " + string(role),
		Role:         role,
		IsActive:     true,
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createPatient(t *testing.T, st *store.Store, name string) *model.Patient {
	t.Helper()
	p := &model.Patient{
		MedicalRecordNo: "MRN-" + suffix(),
		FullName:        name,
		DateOfBirth:     model.NewDate(time.Date(1988, 3, 14, 0, 0, 0, 0, time.UTC)),
		Gender:          "female",
	}
	if err := st.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func createDoctor(t *testing.T, st *store.Store) *model.Doctor {
	t.Helper()
	u := createUser(t, st, model.RoleDoctor)
	d := &model.Doctor{UserID: u.ID, Specialization: "General", Schedule: "Mon-Fri"}
	if err := st.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return d
}

func TestMigrationsIdempotent(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	n, err := store.NewMigrator(st.Pool()).Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing to apply, got %d", n)
	}

	statuses, err := store.NewMigrator(st.Pool()).Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied || s.AppliedAt == nil {
			t.Errorf("migration %s not applied", s.Name)
		}
	}
}

func TestUserRoundTrip(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := createUser(t, st, model.RoleReceptionist)

	got, err := st.UserByUsername(ctx, u.Username)
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if got.ID != u.ID || got.Role != model.RoleReceptionist || !got.IsActive {
		t.Errorf("unexpected user %+v", got)
	}

	taken, err := st.UsernameTaken(ctx, u.Username, u.ID)
	if err != nil || taken {
		t.Errorf("own username should not count as taken: %v %v", taken, err)
	}

	dup := &model.User{Username: u.Username, PasswordHash: "x", FullName: "Other", Role: model.RoleAdmin, IsActive: true}
	var de *store.DuplicateError
	if err := st.CreateUser(ctx, dup); !errors.As(err, &de) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if de.Constraint != "users_username_key" {
		t.Errorf("constraint = %q", de.Constraint)
	}

	if _, err := st.UserByID(ctx, -1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBumpsUpdatedAt(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	p := createPatient(t, st, "Chioma Eze")

	phone := "+234 800 000 0000"
	got, err := st.UpdatePatient(ctx, p.ID, model.PatientPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Phone != phone || got.FullName != p.FullName {
		t.Errorf("partial update changed the wrong fields: %+v", got)
	}
	if !got.UpdatedAt.After(p.UpdatedAt) {
		t.Errorf("updated_at did not advance: %v -> %v", p.UpdatedAt, got.UpdatedAt)
	}
}

func TestSearchPatientsEscapesWildcards(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	tag := suffix()
	createPatient(t, st, "Ngozi 100% "+tag)
	createPatient(t, st, "Ngozi 1000 "+tag)

	got, total, err := st.SearchPatients(ctx, "100% "+tag, model.Page{Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("expected one literal match, got %d (total %d)", len(got), total)
	}

	got, _, err = st.SearchPatients(ctx, "NGOZI", model.Page{Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) < 2 {
		t.Errorf("search should be case-insensitive, got %d", len(got))
	}
}

func TestDeleteWithDependents(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	p := createPatient(t, st, "Bola Ade")
	d := createDoctor(t, st)

	rec := &model.MedicalRecord{PatientID: p.ID, DoctorID: d.ID, VisitDate: time.Now().UTC(), Diagnosis: "Flu", Prescription: "Rest"}
	if err := st.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}

	var fk *store.ForeignKeyError
	if _, err := st.DeletePatient(ctx, p.ID); !errors.As(err, &fk) {
		t.Fatalf("expected ForeignKeyError, got %v", err)
	}

	if ok, err := st.DeleteRecord(ctx, rec.ID); err != nil || !ok {
		t.Fatalf("delete record: %v %v", ok, err)
	}
	if ok, err := st.DeletePatient(ctx, p.ID); err != nil || !ok {
		t.Fatalf("delete patient: %v %v", ok, err)
	}
	if ok, err := st.DeletePatient(ctx, p.ID); err != nil || ok {
		t.Errorf("second delete should report nothing removed: %v %v", ok, err)
	}
}

func TestReceiptAndStats(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	cashier := createUser(t, st, model.RoleReceptionist)
	p := createPatient(t, st, "Tunde Bakare")
	d := createDoctor(t, st)

	// a window far in the past keeps other tests' payments out of the sums
	day := time.Date(1999, 1, 4, 9, 0, 0, 0, time.UTC)
	rec := &model.MedicalRecord{PatientID: p.ID, DoctorID: d.ID, VisitDate: day, Diagnosis: "Malaria", Prescription: "ACT"}
	if err := st.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}

	pm := &model.Payment{
		PatientID:        p.ID,
		MedicalRecordID:  &rec.ID,
		CashierID:        cashier.ID,
		DoctorServiceFee: 15000,
		MedicineFee:      7550,
		TotalAmount:      22550,
		PaymentDate:      day.Add(time.Hour),
		ReceiptNumber:    "RCP-TEST-" + suffix(),
	}
	if err := st.CreatePayment(ctx, pm); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	rc, err := st.Receipt(ctx, pm.ReceiptNumber)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if rc.PatientRecordNo != p.MedicalRecordNo || rc.CashierName != cashier.FullName {
		t.Errorf("unexpected receipt header %+v", rc)
	}
	if rc.Diagnosis == nil || *rc.Diagnosis != "Malaria" || rc.DoctorName == nil {
		t.Errorf("receipt missing visit details: %+v", rc)
	}
	if rc.Payment.TotalAmount.String() != "225.50" {
		t.Errorf("total = %s", rc.Payment.TotalAmount)
	}

	from, to := day, day.AddDate(0, 0, 1)
	stats, err := st.PaymentStats(ctx, &from, &to)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Count < 1 || stats.TotalRevenue < 22550 {
		t.Errorf("payment not counted: %+v", stats)
	}
	if stats.TotalRevenue != stats.DoctorServiceFee+stats.MedicineFee {
		t.Errorf("revenue does not add up: %+v", stats)
	}

	dup := *pm
	var de *store.DuplicateError
	if err := st.CreatePayment(ctx, &dup); !errors.As(err, &de) {
		t.Errorf("expected DuplicateError on reused receipt number, got %v", err)
	}

	if _, err := st.Receipt(ctx, "RCP-MISSING"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	st := setup(t)
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if s := st.Stats(); s.MaxConns == 0 {
		t.Errorf("unexpected pool stats %+v", s)
	}
}
