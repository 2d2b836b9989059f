package store

import (
	"context"
	"time"

	"clinic-management-api/internal/model"
)

const paymentSelect = `SELECT pm.id, pm.patient_id, pm.medical_record_id, pm.cashier_id,
	pm.doctor_service_fee, pm.medicine_fee, pm.total_amount, pm.payment_date, pm.receipt_number,
	p.full_name, u.full_name, pm.created_at, pm.updated_at
	FROM payments pm
	JOIN patients p ON p.id = pm.patient_id
	JOIN users u ON u.id = pm.cashier_id`

func scanPayment(r row) (*model.Payment, error) {
	pm := &model.Payment{}
	var fee, med, total int64
	err := r.Scan(&pm.ID, &pm.PatientID, &pm.MedicalRecordID, &pm.CashierID,
		&fee, &med, &total, &pm.PaymentDate, &pm.ReceiptNumber,
		&pm.PatientName, &pm.CashierName, &pm.CreatedAt, &pm.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	pm.DoctorServiceFee = model.Amount(fee)
	pm.MedicineFee = model.Amount(med)
	pm.TotalAmount = model.Amount(total)
	return pm, nil
}

func (s *Store) CreatePayment(ctx context.Context, pm *model.Payment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO payments (patient_id, medical_record_id, cashier_id, doctor_service_fee, medicine_fee, total_amount, payment_date, receipt_number)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, created_at, updated_at`,
		pm.PatientID, pm.MedicalRecordID, pm.CashierID,
		int64(pm.DoctorServiceFee), int64(pm.MedicineFee), int64(pm.TotalAmount),
		pm.PaymentDate, pm.ReceiptNumber,
	).Scan(&pm.ID, &pm.CreatedAt, &pm.UpdatedAt)
	return mapErr(err)
}

func (s *Store) PaymentByID(ctx context.Context, id int64) (*model.Payment, error) {
	return scanPayment(s.pool.QueryRow(ctx, paymentSelect+` WHERE pm.id = $1`, id))
}

func (s *Store) ReceiptTaken(ctx context.Context, receiptNo string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM payments WHERE receipt_number = $1`, receiptNo)
}

func paymentWhere(f model.PaymentFilter) *where {
	w := &where{}
	if f.PatientID != nil {
		w.add("pm.patient_id = ?", *f.PatientID)
	}
	if f.From != nil {
		w.add("pm.payment_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("pm.payment_date < ?", *f.To)
	}
	return w
}

func (s *Store) ListPayments(ctx context.Context, f model.PaymentFilter) ([]model.Payment, int, error) {
	w := paymentWhere(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments pm`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := paymentSelect + w.String() + ` ORDER BY pm.payment_date DESC, pm.id DESC` + w.page(f.Limit, f.Offset)
	out, err := s.queryPayments(ctx, q, w.args...)
	return out, total, err
}

func (s *Store) queryPayments(ctx context.Context, q string, args ...any) ([]model.Payment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		pm, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pm)
	}
	return out, rows.Err()
}

// Receipt joins a payment with the patient, cashier and, when present, the
// visit it pays for.
func (s *Store) Receipt(ctx context.Context, receiptNo string) (*model.Receipt, error) {
	pm, err := scanPayment(s.pool.QueryRow(ctx, paymentSelect+` WHERE pm.receipt_number = $1`, receiptNo))
	if err != nil {
		return nil, err
	}
	rc := &model.Receipt{Payment: *pm, PatientName: pm.PatientName, CashierName: pm.CashierName}
	if err := s.pool.QueryRow(ctx,
		`SELECT medical_record_no FROM patients WHERE id = $1`, pm.PatientID,
	).Scan(&rc.PatientRecordNo); err != nil {
		return nil, mapErr(err)
	}
	if pm.MedicalRecordID != nil {
		rec, err := s.RecordByID(ctx, *pm.MedicalRecordID)
		if err != nil {
			return nil, err
		}
		rc.Diagnosis = &rec.Diagnosis
		rc.DoctorName = &rec.DoctorName
		rc.VisitDate = &rec.VisitDate
	}
	return rc, nil
}

// PaymentStats sums fees over payments dated in [from, to); nil bounds are open.
func (s *Store) PaymentStats(ctx context.Context, from, to *time.Time) (model.PaymentStatistics, error) {
	w := paymentWhere(model.PaymentFilter{From: from, To: to})
	var st model.PaymentStatistics
	var fee, med, total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(pm.doctor_service_fee), 0)::BIGINT,
		        COALESCE(SUM(pm.medicine_fee), 0)::BIGINT,
		        COALESCE(SUM(pm.total_amount), 0)::BIGINT
		 FROM payments pm`+w.String(), w.args...,
	).Scan(&st.Count, &fee, &med, &total)
	if err != nil {
		return st, err
	}
	st.DoctorServiceFee = model.Amount(fee)
	st.MedicineFee = model.Amount(med)
	st.TotalRevenue = model.Amount(total)
	return st, nil
}

func (s *Store) RecentPayments(ctx context.Context, n int) ([]model.Payment, error) {
	return s.queryPayments(ctx, paymentSelect+` ORDER BY pm.created_at DESC, pm.id DESC LIMIT $1`, n)
}
