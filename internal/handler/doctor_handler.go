package handler

import (
	"context"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
	"clinic-management-api/internal/service"
)

type doctorsServer struct{ *Handler }

func (h doctorsServer) Create(ctx context.Context, req *rpc.CreateDoctorRequest) (*model.Doctor, error) {
	d, err := h.svc.CreateDoctor(ctx, service.CreateDoctorInput{
		UserID:         req.UserID,
		Specialization: req.Specialization,
		Schedule:       req.Schedule,
	})
	return d, h.fail(ctx, err)
}

func (h doctorsServer) GetAll(ctx context.Context, req *rpc.PageRequest) (*model.List[model.Doctor], error) {
	list, err := h.svc.ListDoctors(ctx, req.Page())
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &list, nil
}

func (h doctorsServer) GetById(ctx context.Context, req *rpc.IDRequest) (*model.Doctor, error) {
	d, err := h.svc.GetDoctor(ctx, req.ID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return found(d, "doctor", req.ID)
}

func (h doctorsServer) Update(ctx context.Context, req *rpc.UpdateDoctorRequest) (*model.Doctor, error) {
	d, err := h.svc.UpdateDoctor(ctx, req.ID, model.DoctorPatch{
		Specialization: req.Specialization,
		Schedule:       req.Schedule,
	})
	return d, h.fail(ctx, err)
}

func (h doctorsServer) Delete(ctx context.Context, req *rpc.IDRequest) (*rpc.DeleteResponse, error) {
	if err := h.svc.DeleteDoctor(ctx, req.ID); err != nil {
		return nil, h.fail(ctx, err)
	}
	return deleted(), nil
}

func (h doctorsServer) GetPatients(ctx context.Context, req *rpc.IDRequest) (*rpc.Items[model.Patient], error) {
	ps, err := h.svc.DoctorPatients(ctx, req.ID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return items(ps), nil
}
