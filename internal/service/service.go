// Package service holds the clinic's business rules: existence checks on
// referenced rows, uniqueness pre-checks, partial updates, dependent-row
// delete guards, dashboard windows and session authentication. Persistence
// is behind Repository; internal/store is the postgres implementation.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/auth"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	ListUsers(ctx context.Context, f model.UserFilter) ([]model.User, int, error)
	UpdateUser(ctx context.Context, id int64, p model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	CountUsers(ctx context.Context, role *model.Role) (int64, error)
}

type PatientRepository interface {
	CreatePatient(ctx context.Context, p *model.Patient) error
	PatientByID(ctx context.Context, id int64) (*model.Patient, error)
	RecordNoTaken(ctx context.Context, recordNo string, excludeID int64) (bool, error)
	ListPatients(ctx context.Context, pg model.Page) ([]model.Patient, int, error)
	SearchPatients(ctx context.Context, query string, pg model.Page) ([]model.Patient, int, error)
	UpdatePatient(ctx context.Context, id int64, p model.PatientPatch) (*model.Patient, error)
	DeletePatient(ctx context.Context, id int64) (bool, error)
	CountPatients(ctx context.Context, since time.Time) (int64, error)
	RecentPatients(ctx context.Context, n int) ([]model.Patient, error)
}

type DoctorRepository interface {
	CreateDoctor(ctx context.Context, d *model.Doctor) error
	DoctorByID(ctx context.Context, id int64) (*model.Doctor, error)
	DoctorByUserID(ctx context.Context, userID int64) (*model.Doctor, error)
	ListDoctors(ctx context.Context, pg model.Page) ([]model.Doctor, int, error)
	UpdateDoctor(ctx context.Context, id int64, p model.DoctorPatch) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, id int64) (bool, error)
	CountRecordsByDoctor(ctx context.Context, doctorID int64) (int64, error)
	DoctorPatients(ctx context.Context, doctorID int64) ([]model.Patient, error)
}

type RecordRepository interface {
	CreateRecord(ctx context.Context, m *model.MedicalRecord) error
	RecordByID(ctx context.Context, id int64) (*model.MedicalRecord, error)
	ListRecords(ctx context.Context, f model.RecordFilter) ([]model.MedicalRecord, int, error)
	RecordsByPatient(ctx context.Context, patientID int64) ([]model.MedicalRecord, error)
	RecordsBetween(ctx context.Context, from, to time.Time, doctorID *int64) ([]model.MedicalRecord, error)
	UpdateRecord(ctx context.Context, id int64, p model.MedicalRecordPatch) (*model.MedicalRecord, error)
	DeleteRecord(ctx context.Context, id int64) (bool, error)
	CountPaymentsByRecord(ctx context.Context, recordID int64) (int64, error)
	CountRecords(ctx context.Context, since time.Time, doctorID *int64) (int64, error)
	RecentRecords(ctx context.Context, n int) ([]model.MedicalRecord, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, pm *model.Payment) error
	PaymentByID(ctx context.Context, id int64) (*model.Payment, error)
	ReceiptTaken(ctx context.Context, receiptNo string) (bool, error)
	ListPayments(ctx context.Context, f model.PaymentFilter) ([]model.Payment, int, error)
	Receipt(ctx context.Context, receiptNo string) (*model.Receipt, error)
	PaymentStats(ctx context.Context, from, to *time.Time) (model.PaymentStatistics, error)
	RecentPayments(ctx context.Context, n int) ([]model.Payment, error)
}

type Repository interface {
	UserRepository
	PatientRepository
	DoctorRepository
	RecordRepository
	PaymentRepository
}

var _ Repository = (*store.Store)(nil)

type Service struct {
	repo   Repository
	tokens *auth.Tokens
	loc    *time.Location
	now    func() time.Time
	log    zerolog.Logger
}

type Option func(*Service)

// WithLocation sets the zone that defines local midnight for dashboard windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(repo Repository, tokens *auth.Tokens, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		loc:    time.Local,
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// absent turns store.ErrNotFound into a nil result for read paths.
func absent[T any](v *T, err error) (*T, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// mustExist turns store.ErrNotFound into a NotFound naming the entity and id.
func mustExist[T any](v *T, err error, entity string, id int64) (*T, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFoundf(entity, id)
	}
	return v, err
}

// writeErr maps constraint violations that slipped past the pre-checks.
func writeErr(err error, entity, field, value string) error {
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		return apperr.Duplicate(entity, field, value)
	}
	var fk *store.ForeignKeyError
	if errors.As(err, &fk) {
		return &apperr.Error{
			Kind:    apperr.NotFound,
			Entity:  entity,
			Message: fmt.Sprintf("%s references a row that no longer exists (%s)", entity, fk.Constraint),
		}
	}
	return err
}

func page(p model.Page) model.Page { return p.Normalize() }
