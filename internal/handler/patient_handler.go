package handler

import (
	"context"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
)

type patientsServer struct{ *Handler }

func (h patientsServer) Create(ctx context.Context, req *rpc.CreatePatientRequest) (*model.Patient, error) {
	p, err := h.svc.CreatePatient(ctx, model.Patient{
		MedicalRecordNo: req.MedicalRecordNo,
		FullName:        req.FullName,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		Phone:           req.Phone,
		Address:         req.Address,
	})
	return p, h.fail(ctx, err)
}

func (h patientsServer) GetAll(ctx context.Context, req *rpc.PageRequest) (*model.List[model.Patient], error) {
	list, err := h.svc.ListPatients(ctx, req.Page())
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &list, nil
}

func (h patientsServer) GetById(ctx context.Context, req *rpc.IDRequest) (*model.Patient, error) {
	p, err := h.svc.GetPatient(ctx, req.ID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return found(p, "patient", req.ID)
}

func (h patientsServer) Update(ctx context.Context, req *rpc.UpdatePatientRequest) (*model.Patient, error) {
	p, err := h.svc.UpdatePatient(ctx, req.ID, model.PatientPatch{
		MedicalRecordNo: req.MedicalRecordNo,
		FullName:        req.FullName,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		Phone:           req.Phone,
		Address:         req.Address,
	})
	return p, h.fail(ctx, err)
}

func (h patientsServer) Delete(ctx context.Context, req *rpc.IDRequest) (*rpc.DeleteResponse, error) {
	if err := h.svc.DeletePatient(ctx, req.ID); err != nil {
		return nil, h.fail(ctx, err)
	}
	return deleted(), nil
}

func (h patientsServer) Search(ctx context.Context, req *rpc.SearchPatientsRequest) (*model.List[model.Patient], error) {
	list, err := h.svc.SearchPatients(ctx, req.Query, req.Page())
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &list, nil
}
