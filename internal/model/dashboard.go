package model

// DashboardStats is a role-scoped snapshot; sections the caller's role may
// not see are left nil and omitted from JSON.
type DashboardStats struct {
	Role     Role          `json:"role"`
	Patients *PatientStats `json:"patients,omitempty"`
	Revenue  *RevenueStats `json:"revenue,omitempty"`
	Visits   *VisitStats   `json:"visits,omitempty"`
	Staff    *StaffStats   `json:"staff,omitempty"`
}

// PatientStats counts registrations in each window plus the running total.
type PatientStats struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"this_week"`
	ThisMonth int64 `json:"this_month"`
}

type RevenueStats struct {
	Today         Amount `json:"today"`
	ThisWeek      Amount `json:"this_week"`
	ThisMonth     Amount `json:"this_month"`
	PaymentsToday int64  `json:"payments_today"`
}

// VisitStats counts visit records by visit date. For a doctor the counts are
// limited to their own profile and MyPatients is the number of distinct
// patients they have seen.
type VisitStats struct {
	Today      int64 `json:"today"`
	ThisWeek   int64 `json:"this_week"`
	ThisMonth  int64 `json:"this_month"`
	MyPatients int64 `json:"my_patients,omitempty"`
}

type StaffStats struct {
	Total         int64 `json:"total"`
	Admins        int64 `json:"admins"`
	Doctors       int64 `json:"doctors"`
	Receptionists int64 `json:"receptionists"`
}
