package handler

import (
	"context"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
)

type dashboardServer struct{ *Handler }

// GetStats returns the sections visible to the caller's role.
func (h dashboardServer) GetStats(ctx context.Context, _ *rpc.Empty) (*model.DashboardStats, error) {
	u, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := h.svc.Stats(ctx, u)
	return st, h.fail(ctx, err)
}

func (h dashboardServer) GetRecentActivities(ctx context.Context, req *rpc.RecentActivitiesRequest) (*rpc.Items[model.Activity], error) {
	out, err := h.svc.RecentActivities(ctx, req.Limit)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return items(out), nil
}

func (h dashboardServer) GetTodaysSchedule(ctx context.Context, req *rpc.TodayRequest) (*rpc.Items[model.MedicalRecord], error) {
	who, err := scheduleOwner(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := h.svc.TodaysSchedule(ctx, who)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return items(out), nil
}
