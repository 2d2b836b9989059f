package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/store"
)

// MaxActivities caps the merged recent-activity feed.
const MaxActivities = 10

// activitiesPerKind is how many of the latest rows of each kind are merged.
const activitiesPerKind = 3

type dayWindows struct {
	today, week, month time.Time
}

// windows computes local-midnight boundaries for today, the current week
// (starting Monday) and the current month.
func (s *Service) windows() dayWindows {
	now := s.now().In(s.loc)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	back := (int(today.Weekday()) + 6) % 7
	return dayWindows{
		today: today,
		week:  today.AddDate(0, 0, -back),
		month: time.Date(y, m, 1, 0, 0, 0, 0, s.loc),
	}
}

// Stats builds the dashboard for the given account. Admins see every
// section; doctors see patients and their own visits; receptionists see
// patients and revenue.
func (s *Service) Stats(ctx context.Context, u *model.User) (*model.DashboardStats, error) {
	w := s.windows()
	out := &model.DashboardStats{Role: u.Role}

	var err error
	if out.Patients, err = s.patientStats(ctx, w); err != nil {
		return nil, err
	}

	switch u.Role {
	case model.RoleAdmin:
		if out.Revenue, err = s.revenueStats(ctx, w); err != nil {
			return nil, err
		}
		if out.Visits, err = s.visitStats(ctx, w, nil); err != nil {
			return nil, err
		}
		if out.Staff, err = s.staffStats(ctx); err != nil {
			return nil, err
		}
	case model.RoleReceptionist:
		if out.Revenue, err = s.revenueStats(ctx, w); err != nil {
			return nil, err
		}
	case model.RoleDoctor:
		d, err := s.repo.DoctorByUserID(ctx, u.ID)
		if errors.Is(err, store.ErrNotFound) {
			out.Visits = &model.VisitStats{}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if out.Visits, err = s.visitStats(ctx, w, &d.ID); err != nil {
			return nil, err
		}
		seen, err := s.repo.DoctorPatients(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		out.Visits.MyPatients = int64(len(seen))
	}
	return out, nil
}

func (s *Service) patientStats(ctx context.Context, w dayWindows) (*model.PatientStats, error) {
	st := &model.PatientStats{}
	for _, c := range []struct {
		since time.Time
		dst   *int64
	}{
		{time.Time{}, &st.Total},
		{w.today, &st.Today},
		{w.week, &st.ThisWeek},
		{w.month, &st.ThisMonth},
	} {
		n, err := s.repo.CountPatients(ctx, c.since)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return st, nil
}

func (s *Service) revenueStats(ctx context.Context, w dayWindows) (*model.RevenueStats, error) {
	st := &model.RevenueStats{}
	for _, c := range []struct {
		since time.Time
		dst   *model.Amount
	}{
		{w.today, &st.Today},
		{w.week, &st.ThisWeek},
		{w.month, &st.ThisMonth},
	} {
		since := c.since
		ps, err := s.repo.PaymentStats(ctx, &since, nil)
		if err != nil {
			return nil, err
		}
		*c.dst = ps.TotalRevenue
		if since.Equal(w.today) {
			st.PaymentsToday = ps.Count
		}
	}
	return st, nil
}

func (s *Service) visitStats(ctx context.Context, w dayWindows, doctorID *int64) (*model.VisitStats, error) {
	st := &model.VisitStats{}
	for _, c := range []struct {
		since time.Time
		dst   *int64
	}{
		{w.today, &st.Today},
		{w.week, &st.ThisWeek},
		{w.month, &st.ThisMonth},
	} {
		n, err := s.repo.CountRecords(ctx, c.since, doctorID)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return st, nil
}

func (s *Service) staffStats(ctx context.Context) (*model.StaffStats, error) {
	st := &model.StaffStats{}
	var err error
	if st.Total, err = s.repo.CountUsers(ctx, nil); err != nil {
		return nil, err
	}
	for role, dst := range map[model.Role]*int64{
		model.RoleAdmin:        &st.Admins,
		model.RoleDoctor:       &st.Doctors,
		model.RoleReceptionist: &st.Receptionists,
	} {
		if *dst, err = s.repo.CountUsers(ctx, &role); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// RecentActivities merges the latest patients, visit records and payments
// into one feed, newest first, at most limit long.
func (s *Service) RecentActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > MaxActivities {
		limit = MaxActivities
	}

	var feed []model.Activity
	patients, err := s.repo.RecentPatients(ctx, activitiesPerKind)
	if err != nil {
		return nil, err
	}
	for _, p := range patients {
		feed = append(feed, model.Activity{
			Kind:        model.ActivityPatient,
			EntityID:    p.ID,
			Description: fmt.Sprintf("New patient registered: %s", p.FullName),
			Timestamp:   p.CreatedAt,
		})
	}

	records, err := s.repo.RecentRecords(ctx, activitiesPerKind)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		feed = append(feed, model.Activity{
			Kind:        model.ActivityRecord,
			EntityID:    r.ID,
			Description: fmt.Sprintf("Medical record for %s by %s: %s", r.PatientName, r.DoctorName, r.Diagnosis),
			Timestamp:   r.CreatedAt,
		})
	}

	payments, err := s.repo.RecentPayments(ctx, activitiesPerKind)
	if err != nil {
		return nil, err
	}
	for _, pm := range payments {
		feed = append(feed, model.Activity{
			Kind:        model.ActivityPayment,
			EntityID:    pm.ID,
			Description: fmt.Sprintf("Payment of %s received from %s (%s)", pm.TotalAmount, pm.PatientName, pm.ReceiptNumber),
			Timestamp:   pm.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	if feed == nil {
		feed = []model.Activity{}
	}
	return feed, nil
}

// TodaysSchedule is today's visit list, optionally for the doctor profile
// owned by doctorUserID.
func (s *Service) TodaysSchedule(ctx context.Context, doctorUserID *int64) ([]model.MedicalRecord, error) {
	return s.TodaysRecords(ctx, doctorUserID)
}
