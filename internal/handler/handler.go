package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/middleware"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/monitoring"
	"clinic-management-api/internal/rpc"
	"clinic-management-api/internal/service"
)

type Handler struct {
	svc *service.Service
	log zerolog.Logger
}

func New(svc *service.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Servers exposes the handler as one server per clinic service.
func (h *Handler) Servers() rpc.Servers {
	return rpc.Servers{
		Auth:           authServer{h},
		Users:          usersServer{h},
		Patients:       patientsServer{h},
		Doctors:        doctorsServer{h},
		MedicalRecords: recordsServer{h},
		Payments:       paymentsServer{h},
		Dashboard:      dashboardServer{h},
	}
}

// fail maps a service error to a gRPC status. Anything outside the
// taxonomy is logged, reported and hidden behind "internal error".
func (h *Handler) fail(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	msg := err.Error()
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return status.Error(codes.InvalidArgument, msg)
	case apperr.NotFound:
		return status.Error(codes.NotFound, msg)
	case apperr.Conflict:
		if apperr.ReasonOf(err) == apperr.ReasonHasDependents {
			return status.Error(codes.FailedPrecondition, msg)
		}
		return status.Error(codes.AlreadyExists, msg)
	case apperr.Unauthorized:
		return status.Error(codes.Unauthenticated, msg)
	case apperr.Forbidden:
		return status.Error(codes.PermissionDenied, msg)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	h.log.Error().Err(err).Msg("handler failed")
	extra := map[string]any{}
	if u, ok := middleware.UserFrom(ctx); ok {
		extra["user_id"] = u.ID
	}
	monitoring.CaptureError(err, extra)
	return status.Error(codes.Internal, "internal error")
}

// found turns a nil read into NotFound for getById-style calls.
func found[T any](v *T, entity string, id int64) (*T, error) {
	if v == nil {
		return nil, status.Error(codes.NotFound, apperr.NotFoundf(entity, id).Error())
	}
	return v, nil
}

func caller(ctx context.Context) (*model.User, error) {
	u, ok := middleware.UserFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "not signed in")
	}
	return u, nil
}

func deleted() *rpc.DeleteResponse { return &rpc.DeleteResponse{Success: true} }

func items[T any](xs []T) *rpc.Items[T] {
	if xs == nil {
		xs = []T{}
	}
	return &rpc.Items[T]{Data: xs}
}
