package handler

import (
	"context"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
	"clinic-management-api/internal/service"
)

type recordsServer struct{ *Handler }

func (h recordsServer) Create(ctx context.Context, req *rpc.CreateRecordRequest) (*model.MedicalRecord, error) {
	in := service.CreateRecordInput{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	}
	if req.VisitDate != nil {
		in.VisitDate = *req.VisitDate
	}
	r, err := h.svc.CreateRecord(ctx, in)
	return r, h.fail(ctx, err)
}

func (h recordsServer) GetAll(ctx context.Context, req *rpc.ListRecordsRequest) (*model.List[model.MedicalRecord], error) {
	list, err := h.svc.ListRecords(ctx, model.RecordFilter{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Page:      req.Page(),
	})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &list, nil
}

func (h recordsServer) GetById(ctx context.Context, req *rpc.IDRequest) (*model.MedicalRecord, error) {
	r, err := h.svc.GetRecord(ctx, req.ID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return found(r, "medical record", req.ID)
}

func (h recordsServer) Update(ctx context.Context, req *rpc.UpdateRecordRequest) (*model.MedicalRecord, error) {
	r, err := h.svc.UpdateRecord(ctx, req.ID, model.MedicalRecordPatch{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		VisitDate:    req.VisitDate,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	})
	return r, h.fail(ctx, err)
}

func (h recordsServer) Delete(ctx context.Context, req *rpc.IDRequest) (*rpc.DeleteResponse, error) {
	if err := h.svc.DeleteRecord(ctx, req.ID); err != nil {
		return nil, h.fail(ctx, err)
	}
	return deleted(), nil
}

func (h recordsServer) GetPatientHistory(ctx context.Context, req *rpc.PatientRequest) (*rpc.Items[model.MedicalRecord], error) {
	out, err := h.svc.PatientHistory(ctx, req.PatientID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return items(out), nil
}

func (h recordsServer) GetTodaysRecords(ctx context.Context, req *rpc.TodayRequest) (*rpc.Items[model.MedicalRecord], error) {
	who, err := scheduleOwner(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := h.svc.TodaysRecords(ctx, who)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return items(out), nil
}

// scheduleOwner picks whose visits to list. A doctor who names nobody gets
// their own schedule; other roles get the whole clinic.
func scheduleOwner(ctx context.Context, req *rpc.TodayRequest) (*int64, error) {
	if req.DoctorUserID != nil {
		return req.DoctorUserID, nil
	}
	u, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if u.Role == model.RoleDoctor {
		id := u.ID
		return &id, nil
	}
	return nil, nil
}
