package model

import "time"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the limit into (0, MaxLimit] and the offset to >= 0.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// List is a page of results plus the total row count.
type List[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewList[T any](data []T, total int, p Page) List[T] {
	if data == nil {
		data = []T{}
	}
	return List[T]{
		Data:    data,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+len(data) < total,
	}
}

type UserFilter struct {
	Role   *Role
	Active *bool
	Page
}

type RecordFilter struct {
	PatientID *int64
	DoctorID  *int64
	Page
}

type PaymentFilter struct {
	PatientID *int64
	From      *time.Time
	To        *time.Time
	Page
}
