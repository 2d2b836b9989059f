package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/model"
)

type CreatePaymentInput struct {
	PatientID        int64
	MedicalRecordID  *int64
	CashierID        int64
	DoctorServiceFee model.Amount
	MedicineFee      model.Amount
	PaymentDate      time.Time
	ReceiptNumber    string
}

// receiptNumber renders RCP-YYYYMMDD-XXXXXXXX from the payment day and a random suffix.
func receiptNumber(day time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("RCP-%s-%s", day.Format("20060102"), id[:8])
}

// CreatePayment stores a charge. The total is always derived from the two
// fees; a receipt number is generated when none is supplied.
func (s *Service) CreatePayment(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	if in.DoctorServiceFee < 0 || in.MedicineFee < 0 {
		return nil, apperr.Invalidf("fees cannot be negative")
	}
	if in.DoctorServiceFee > model.MaxAmount || in.MedicineFee > model.MaxAmount {
		return nil, apperr.Invalidf("fees cannot exceed %s", model.MaxAmount)
	}
	total, ok := in.DoctorServiceFee.Add(in.MedicineFee)
	if !ok {
		return nil, apperr.Invalidf("total amount out of range")
	}

	p, err := s.repo.PatientByID(ctx, in.PatientID)
	if _, err = mustExist(p, err, "patient", in.PatientID); err != nil {
		return nil, err
	}
	if in.MedicalRecordID != nil {
		rec, err := s.repo.RecordByID(ctx, *in.MedicalRecordID)
		if rec, err = mustExist(rec, err, "medical record", *in.MedicalRecordID); err != nil {
			return nil, err
		}
		if rec.PatientID != in.PatientID {
			return nil, apperr.Invalidf("medical record %d belongs to patient %d, not %d",
				rec.ID, rec.PatientID, in.PatientID)
		}
	}
	cashier, err := s.repo.UserByID(ctx, in.CashierID)
	if _, err = mustExist(cashier, err, "user", in.CashierID); err != nil {
		return nil, err
	}

	if in.PaymentDate.IsZero() {
		in.PaymentDate = s.now()
	}
	in.ReceiptNumber = strings.TrimSpace(in.ReceiptNumber)
	if in.ReceiptNumber == "" {
		in.ReceiptNumber = receiptNumber(in.PaymentDate.In(s.loc))
	}
	taken, err := s.repo.ReceiptTaken(ctx, in.ReceiptNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Duplicate("payment", "receipt_number", in.ReceiptNumber)
	}

	pm := &model.Payment{
		PatientID:        in.PatientID,
		MedicalRecordID:  in.MedicalRecordID,
		CashierID:        in.CashierID,
		DoctorServiceFee: in.DoctorServiceFee,
		MedicineFee:      in.MedicineFee,
		TotalAmount:      total,
		PaymentDate:      in.PaymentDate,
		ReceiptNumber:    in.ReceiptNumber,
	}
	if err := s.repo.CreatePayment(ctx, pm); err != nil {
		return nil, writeErr(err, "payment", "receipt_number", in.ReceiptNumber)
	}
	s.log.Info().
		Int64("payment_id", pm.ID).
		Str("receipt", pm.ReceiptNumber).
		Str("total", pm.TotalAmount.String()).
		Msg("payment recorded")

	out, err := s.repo.PaymentByID(ctx, pm.ID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListPayments(ctx context.Context, f model.PaymentFilter) (model.List[model.Payment], error) {
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return model.List[model.Payment]{}, apperr.Invalidf("from must be before to")
	}
	f.Page = page(f.Page)
	rows, total, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return model.List[model.Payment]{}, err
	}
	return model.NewList(rows, total, f.Page), nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	return absent(s.repo.PaymentByID(ctx, id))
}

// PaymentHistory is every payment of one patient, newest first.
func (s *Service) PaymentHistory(ctx context.Context, patientID int64) ([]model.Payment, error) {
	p, err := s.repo.PatientByID(ctx, patientID)
	if _, err = mustExist(p, err, "patient", patientID); err != nil {
		return nil, err
	}

	var out []model.Payment
	pg := model.Page{Limit: model.MaxLimit}
	for {
		rows, total, err := s.repo.ListPayments(ctx, model.PaymentFilter{PatientID: &patientID, Page: pg})
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) == 0 || len(out) >= total {
			break
		}
		pg.Offset += len(rows)
	}
	if out == nil {
		out = []model.Payment{}
	}
	return out, nil
}

// Receipt returns nil, nil for an unknown receipt number.
func (s *Service) Receipt(ctx context.Context, receiptNo string) (*model.Receipt, error) {
	receiptNo = strings.TrimSpace(receiptNo)
	if receiptNo == "" {
		return nil, apperr.Invalidf("receipt_number is required")
	}
	return absent(s.repo.Receipt(ctx, receiptNo))
}

// PaymentStatistics sums payments dated in [from, to); either bound may be nil.
func (s *Service) PaymentStatistics(ctx context.Context, from, to *time.Time) (model.PaymentStatistics, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return model.PaymentStatistics{}, apperr.Invalidf("from must be before to")
	}
	return s.repo.PaymentStats(ctx, from, to)
}
