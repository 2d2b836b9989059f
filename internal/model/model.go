package model

import "time"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch carries only the fields a caller asked to change.
// Password is plaintext and gets hashed before it reaches the store.
type UserPatch struct {
	Username     *string
	Password     *string
	PasswordHash *string
	FullName     *string
	Role         *Role
	IsActive     *bool
}

type Doctor struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Specialization string    `json:"specialization"`
	Schedule       string    `json:"schedule"`
	FullName       string    `json:"full_name,omitempty"`
	Username       string    `json:"username,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DoctorPatch struct {
	Specialization *string
	Schedule       *string
}

type Patient struct {
	ID              int64     `json:"id"`
	MedicalRecordNo string    `json:"medical_record_no"`
	FullName        string    `json:"full_name"`
	DateOfBirth     Date      `json:"date_of_birth"`
	Gender          string    `json:"gender"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PatientPatch struct {
	MedicalRecordNo *string
	FullName        *string
	DateOfBirth     *Date
	Gender          *string
	Phone           *string
	Address         *string
}

type MedicalRecord struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patient_id"`
	DoctorID     int64     `json:"doctor_id"`
	VisitDate    time.Time `json:"visit_date"`
	Diagnosis    string    `json:"diagnosis"`
	Prescription string    `json:"prescription"`
	Notes        *string   `json:"notes"`
	PatientName  string    `json:"patient_name,omitempty"`
	DoctorName   string    `json:"doctor_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MedicalRecordPatch struct {
	PatientID    *int64
	DoctorID     *int64
	VisitDate    *time.Time
	Diagnosis    *string
	Prescription *string
	Notes        *string
}

type Payment struct {
	ID               int64     `json:"id"`
	PatientID        int64     `json:"patient_id"`
	MedicalRecordID  *int64    `json:"medical_record_id"`
	CashierID        int64     `json:"cashier_id"`
	DoctorServiceFee Amount    `json:"doctor_service_fee"`
	MedicineFee      Amount    `json:"medicine_fee"`
	TotalAmount      Amount    `json:"total_amount"`
	PaymentDate      time.Time `json:"payment_date"`
	ReceiptNumber    string    `json:"receipt_number"`
	PatientName      string    `json:"patient_name,omitempty"`
	CashierName      string    `json:"cashier_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Receipt is a payment joined with everything printed on the slip.
type Receipt struct {
	Payment         Payment    `json:"payment"`
	PatientRecordNo string     `json:"patient_record_no"`
	PatientName     string     `json:"patient_name"`
	CashierName     string     `json:"cashier_name"`
	Diagnosis       *string    `json:"diagnosis,omitempty"`
	DoctorName      *string    `json:"doctor_name,omitempty"`
	VisitDate       *time.Time `json:"visit_date,omitempty"`
}

type PaymentStatistics struct {
	Count            int64  `json:"count"`
	DoctorServiceFee Amount `json:"doctor_service_fee"`
	MedicineFee      Amount `json:"medicine_fee"`
	TotalRevenue     Amount `json:"total_revenue"`
}

type ActivityKind string

const (
	ActivityPatient ActivityKind = "patient"
	ActivityRecord  ActivityKind = "medical_record"
	ActivityPayment ActivityKind = "payment"
)

type Activity struct {
	Kind        ActivityKind `json:"type"`
	EntityID    int64        `json:"entity_id"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}
