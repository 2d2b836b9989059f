package rpc

import (
	"time"

	"clinic-management-api/internal/model"
)

// Request structs carry `validate` tags checked by the validation
// interceptor before any handler runs. Optional fields are pointers so a
// partial update can tell "absent" from "zero".

type IDRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type PageRequest struct {
	Limit  int `json:"limit" validate:"gte=0,lte=100"`
	Offset int `json:"offset" validate:"gte=0"`
}

func (p PageRequest) Page() model.Page {
	return model.Page{Limit: p.Limit, Offset: p.Offset}
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

// Items wraps an unpaginated result list.
type Items[T any] struct {
	Data []T `json:"data"`
}

// auth

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type ValidateTokenResponse struct {
	Valid bool        `json:"valid"`
	User  *model.User `json:"user"`
}

// users

type CreateUserRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=64"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	FullName string     `json:"full_name" validate:"required,max=255"`
	Role     model.Role `json:"role" validate:"required,oneof=admin doctor receptionist"`
	IsActive *bool      `json:"is_active"`
}

type ListUsersRequest struct {
	Role     *model.Role `json:"role" validate:"omitempty,oneof=admin doctor receptionist"`
	IsActive *bool       `json:"is_active"`
	PageRequest
}

type UpdateUserRequest struct {
	ID       int64       `json:"id" validate:"required,gt=0"`
	Username *string     `json:"username" validate:"omitempty,min=3,max=64"`
	Password *string     `json:"password" validate:"omitempty,min=6,max=72"`
	FullName *string     `json:"full_name" validate:"omitempty,max=255"`
	Role     *model.Role `json:"role" validate:"omitempty,oneof=admin doctor receptionist"`
	IsActive *bool       `json:"is_active"`
}

// patients

type CreatePatientRequest struct {
	MedicalRecordNo string     `json:"medical_record_no" validate:"required,max=64"`
	FullName        string     `json:"full_name" validate:"required,max=255"`
	DateOfBirth     model.Date `json:"date_of_birth" validate:"required"`
	Gender          string     `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone           string     `json:"phone" validate:"omitempty,max=32"`
	Address         string     `json:"address"`
}

type UpdatePatientRequest struct {
	ID              int64       `json:"id" validate:"required,gt=0"`
	MedicalRecordNo *string     `json:"medical_record_no" validate:"omitempty,max=64"`
	FullName        *string     `json:"full_name" validate:"omitempty,max=255"`
	DateOfBirth     *model.Date `json:"date_of_birth"`
	Gender          *string     `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone           *string     `json:"phone" validate:"omitempty,max=32"`
	Address         *string     `json:"address"`
}

type SearchPatientsRequest struct {
	Query string `json:"query" validate:"required,max=255"`
	PageRequest
}

// doctors

type CreateDoctorRequest struct {
	UserID         int64  `json:"user_id" validate:"required,gt=0"`
	Specialization string `json:"specialization" validate:"required,max=255"`
	Schedule       string `json:"schedule" validate:"omitempty,json"`
}

type UpdateDoctorRequest struct {
	ID             int64   `json:"id" validate:"required,gt=0"`
	Specialization *string `json:"specialization" validate:"omitempty,max=255"`
	Schedule       *string `json:"schedule" validate:"omitempty,json"`
}

// medical records

type CreateRecordRequest struct {
	PatientID    int64      `json:"patient_id" validate:"required,gt=0"`
	DoctorID     int64      `json:"doctor_id" validate:"required,gt=0"`
	VisitDate    *time.Time `json:"visit_date"`
	Diagnosis    string     `json:"diagnosis" validate:"required"`
	Prescription string     `json:"prescription"`
	Notes        *string    `json:"notes"`
}

type ListRecordsRequest struct {
	PatientID *int64 `json:"patient_id" validate:"omitempty,gt=0"`
	DoctorID  *int64 `json:"doctor_id" validate:"omitempty,gt=0"`
	PageRequest
}

type UpdateRecordRequest struct {
	ID           int64      `json:"id" validate:"required,gt=0"`
	PatientID    *int64     `json:"patient_id" validate:"omitempty,gt=0"`
	DoctorID     *int64     `json:"doctor_id" validate:"omitempty,gt=0"`
	VisitDate    *time.Time `json:"visit_date"`
	Diagnosis    *string    `json:"diagnosis"`
	Prescription *string    `json:"prescription"`
	Notes        *string    `json:"notes"`
}

type PatientRequest struct {
	PatientID int64 `json:"patient_id" validate:"required,gt=0"`
}

// TodayRequest selects today's visits, optionally for the doctor profile
// owned by an account.
type TodayRequest struct {
	DoctorUserID *int64 `json:"doctor_user_id" validate:"omitempty,gt=0"`
}

// payments

type CreatePaymentRequest struct {
	PatientID        int64        `json:"patient_id" validate:"required,gt=0"`
	MedicalRecordID  *int64       `json:"medical_record_id" validate:"omitempty,gt=0"`
	CashierID        *int64       `json:"cashier_id" validate:"omitempty,gt=0"`
	DoctorServiceFee model.Amount `json:"doctor_service_fee" validate:"gte=0,lte=100000000000"`
	MedicineFee      model.Amount `json:"medicine_fee" validate:"gte=0,lte=100000000000"`
	PaymentDate      *time.Time   `json:"payment_date"`
	ReceiptNumber    string       `json:"receipt_number" validate:"omitempty,max=64"`
}

type ListPaymentsRequest struct {
	PatientID *int64     `json:"patient_id" validate:"omitempty,gt=0"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	PageRequest
}

type ReceiptRequest struct {
	ReceiptNumber string `json:"receipt_number" validate:"required,max=64"`
}

type StatisticsRequest struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// dashboard

type Empty struct{}

type RecentActivitiesRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=10"`
}
