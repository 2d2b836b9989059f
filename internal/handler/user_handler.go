package handler

import (
	"context"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
	"clinic-management-api/internal/service"
)

type usersServer struct{ *Handler }

func (h usersServer) Create(ctx context.Context, req *rpc.CreateUserRequest) (*model.User, error) {
	u, err := h.svc.CreateUser(ctx, service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	return u, h.fail(ctx, err)
}

func (h usersServer) GetAll(ctx context.Context, req *rpc.ListUsersRequest) (*model.List[model.User], error) {
	list, err := h.svc.ListUsers(ctx, model.UserFilter{Role: req.Role, Active: req.IsActive, Page: req.Page()})
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &list, nil
}

func (h usersServer) GetById(ctx context.Context, req *rpc.IDRequest) (*model.User, error) {
	u, err := h.svc.GetUser(ctx, req.ID)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return found(u, "user", req.ID)
}

func (h usersServer) Update(ctx context.Context, req *rpc.UpdateUserRequest) (*model.User, error) {
	u, err := h.svc.UpdateUser(ctx, req.ID, model.UserPatch{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	return u, h.fail(ctx, err)
}

func (h usersServer) Delete(ctx context.Context, req *rpc.IDRequest) (*rpc.DeleteResponse, error) {
	if err := h.svc.DeleteUser(ctx, req.ID); err != nil {
		return nil, h.fail(ctx, err)
	}
	return deleted(), nil
}
