package handler

import (
	"context"
	"fmt"
	"time"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
	"clinic-management-api/internal/service"
)

type paymentsServer struct{ *Handler }

// Create records a payment. The cashier defaults to the signed-in account.
func (h paymentsServer) Create(ctx context.Context, req *rpc.CreatePaymentRequest) (*model.Payment, error) {
	u, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	in := service.CreatePaymentInput{
		PatientID:        req.PatientID,
		MedicalRecordID:  req.MedicalRecordID,
		CashierID:        u.ID,
		DoctorServiceFee: req.DoctorServiceFee,
		MedicineFee:      req.MedicineFee,
		ReceiptNumber:    req.ReceiptNumber,
	}
	if req.CashierID != nil {
		in.CashierID = *req.CashierID
	}
	if req.PaymentDate != nil {
		in.PaymentDate = *req.PaymentDate
	}
	pm, err := h.svc.CreatePayment(ctx, in)
	return pm, h.fail(ctx, err)
}

func (h paymentsServer) GetAll(ctx context.Context, req *rpc.ListPaymentsRequest) (*model.List[model.Payment], error) {
	list, err := h.svc.ListPayments(ctx, model.PaymentFilter{
		PatientID: req.PatientID,
		From:      req.From,
		To:        req.To,
		Page:      req.Page(),
	})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &list, nil
}

func (h paymentsServer) GetById(ctx context.Context, req *rpc.IDRequest) (*model.Payment, error) {
	pm, err := h.svc.GetPayment(ctx, req.ID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return found(pm, "payment", req.ID)
}

func (h paymentsServer) GetHistory(ctx context.Context, req *rpc.PatientRequest) (*rpc.Items[model.Payment], error) {
	out, err := h.svc.PaymentHistory(ctx, req.PatientID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return items(out), nil
}

func (h paymentsServer) GetReceipt(ctx context.Context, req *rpc.ReceiptRequest) (*model.Receipt, error) {
	rc, err := h.svc.Receipt(ctx, req.ReceiptNumber)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	if rc == nil {
		return nil, h.fail(ctx, &apperr.Error{
			Kind:    apperr.NotFound,
			Entity:  "receipt",
			Message: fmt.Sprintf("receipt %q not found", req.ReceiptNumber),
		})
	}
	return rc, nil
}

func (h paymentsServer) GetStatistics(ctx context.Context, req *rpc.StatisticsRequest) (*model.PaymentStatistics, error) {
	st, err := h.svc.PaymentStatistics(ctx, utc(req.From), utc(req.To))
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &st, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
