package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKindAndReason(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"not found", NotFoundf("patient", 7), ErrNotFound, true},
		{"wrapped", fmt.Errorf("load: %w", NotFoundf("doctor", 1)), ErrNotFound, true},
		{"duplicate is a conflict", Duplicate("user", "username", "ada"), ErrConflict, true},
		{"duplicate reason", Duplicate("user", "username", "ada"), ErrDuplicate, true},
		{"dependents is not a duplicate", HasDependents("doctor", 3, "medical records"), ErrDuplicate, false},
		{"dependents reason", HasDependents("doctor", 3, "medical records"), ErrHasDependents, true},
		{"kind mismatch", Invalidf("bad"), ErrNotFound, false},
		{"plain error", errors.New("boom"), ErrNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{Invalidf("x"), Validation},
		{NotFoundf("payment", 1), NotFound},
		{Conflictf("x"), Conflict},
		{Unauthorizedf("x"), Unauthorized},
		{Forbiddenf("x"), Forbidden},
		{errors.New("db down"), Internal},
		{nil, Internal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestMessages(t *testing.T) {
	if got := NotFoundf("patient", 99999).Error(); got != "patient with id 99999 not found" {
		t.Errorf("not found message = %q", got)
	}
	if got := Duplicate("patient", "medical record number", "MRN-1").Error(); got != `patient with medical record number "MRN-1" already exists` {
		t.Errorf("duplicate message = %q", got)
	}
	e := &Error{Kind: Internal, Err: errors.New("conn reset")}
	if got := e.Error(); got != "internal: conn reset" {
		t.Errorf("wrapped message = %q", got)
	}
	if ReasonOf(HasDependents("user", 1, "payments")) != ReasonHasDependents {
		t.Error("reason lost")
	}
}
