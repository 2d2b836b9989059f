package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
		err  bool
	}{
		{"225", 22500, false},
		{"225.5", 22550, false},
		{"225.50", 22550, false},
		{"0.01", 1, false},
		{" 10.00 ", 1000, false},
		{"-3.25", -325, false},
		{"", 0, true},
		{"1.234", 0, true},
		{"1.", 0, true},
		{".50", 0, true},
		{"12a", 0, true},
		{"1e3", 0, true},
		{"1000000000.00", MaxAmount, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.err {
				if !errors.Is(err, ErrBadAmount) {
					t.Fatalf("expected ErrBadAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d cents, want %d", got, tt.want)
			}
		})
	}
}

func TestParseAmountRange(t *testing.T) {
	for _, in := range []string{
		"1000000000.01",
		"50000000000000000.00",
		"92233720368547758.99",
		"99999999999999999999",
		"-92233720368547758.99",
	} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrAmountRange) {
			t.Errorf("ParseAmount(%q): expected ErrAmountRange, got %v", in, err)
		}
	}
}

func TestAmountAdd(t *testing.T) {
	tests := []struct {
		a, b Amount
		want Amount
		ok   bool
	}{
		{15000, 7550, 22550, true},
		{MaxAmount, MaxAmount, 2 * MaxAmount, true},
		{math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{math.MaxInt64, 1, 0, false},
		{5_000_000_000_000_000_000, 5_000_000_000_000_000_000, 0, false},
		{math.MinInt64, -1, 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.a.Add(tt.b)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%d.Add(%d) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	var p struct {
		Fee   Amount `json:"fee"`
		Total Amount `json:"total"`
	}
	if err := json.Unmarshal([]byte(`{"fee": 150, "total": "225.5"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Fee != 15000 || p.Total != 22550 {
		t.Fatalf("got fee=%d total=%d", p.Fee, p.Total)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"fee":150.00,"total":225.50}` {
		t.Errorf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"fee": 0.005}`), &p); err == nil {
		t.Error("expected sub-cent amount to be rejected")
	}
}

func TestAmountSumIsExact(t *testing.T) {
	var sum Amount
	for i := 0; i < 10; i++ {
		a, _ := ParseAmount("0.10")
		sum += a
	}
	if sum.String() != "1.00" {
		t.Errorf("sum = %s", sum)
	}
	if Amount(-5).String() != "-0.05" {
		t.Errorf("negative formatting = %s", Amount(-5))
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		DOB Date `json:"dob"`
	}
	if err := json.Unmarshal([]byte(`{"dob":"1990-04-02"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.DOB.String() != "1990-04-02" {
		t.Errorf("got %s", v.DOB)
	}

	if err := json.Unmarshal([]byte(`{"dob":"1990-04-02T23:30:00Z"}`), &v); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if v.DOB.String() != "1990-04-02" {
		t.Errorf("timestamp should truncate to its date, got %s", v.DOB)
	}

	if err := json.Unmarshal([]byte(`{"dob":"02/04/1990"}`), &v); err == nil {
		t.Error("expected bad layout to fail")
	}

	out, _ := json.Marshal(struct {
		DOB Date `json:"dob"`
	}{})
	if string(out) != `{"dob":null}` {
		t.Errorf("zero date = %s", out)
	}
}

func TestNewDateDropsClock(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	d := NewDate(time.Date(2025, 6, 11, 23, 59, 0, 0, loc))
	if d.String() != "2025-06-11" || d.Location() != time.UTC || d.Hour() != 0 {
		t.Errorf("unexpected date %v", d.Time)
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in, want Page
	}{
		{Page{}, Page{Limit: DefaultLimit}},
		{Page{Limit: 500, Offset: 10}, Page{Limit: MaxLimit, Offset: 10}},
		{Page{Limit: 5, Offset: -3}, Page{Limit: 5}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNewList(t *testing.T) {
	l := NewList[int](nil, 0, Page{Limit: 20})
	if l.Data == nil || l.HasMore {
		t.Errorf("empty list = %+v", l)
	}

	l = NewList([]int{1, 2}, 5, Page{Limit: 2, Offset: 2})
	if !l.HasMore {
		t.Error("expected more after offset 2 of 5")
	}
	l = NewList([]int{5}, 5, Page{Limit: 2, Offset: 4})
	if l.HasMore {
		t.Error("last page should not report more")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RoleReceptionist} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("nurse").Valid() {
		t.Error("nurse is not a role")
	}
}
