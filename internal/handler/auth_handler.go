package handler

import (
	"context"

	"clinic-management-api/internal/rpc"
)

type authServer struct{ *Handler }

func (h authServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	sess, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User}, nil
}

// ValidateToken is open so a client can check a stored token before use.
// A rejected token is an Unauthenticated error, not valid=false.
func (h authServer) ValidateToken(ctx context.Context, req *rpc.ValidateTokenRequest) (*rpc.ValidateTokenResponse, error) {
	u, err := h.svc.Authenticate(ctx, req.Token)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.ValidateTokenResponse{Valid: true, User: u}, nil
}
