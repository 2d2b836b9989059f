package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"clinic-management-api/internal/apperr"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
)

type ctxKey string

const userKey ctxKey = "user"

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the account the auth interceptor attached, if any.
func UserFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// skip auth for these
var open = map[string]bool{
	rpc.FullMethod(rpc.AuthService, "Login"):         true,
	rpc.FullMethod(rpc.AuthService, "ValidateToken"): true,
	"/grpc.health.v1.Health/Check":                   true,
	"/grpc.health.v1.Health/Watch":                   true,
}

var (
	adminOnly    = []model.Role{model.RoleAdmin}
	adminOrDesk  = []model.Role{model.RoleAdmin, model.RoleReceptionist}
	adminOrDoc   = []model.Role{model.RoleAdmin, model.RoleDoctor}
	mutatingVerb = map[string]bool{"Create": true, "Update": true, "Delete": true}
)

// Roles returns the roles allowed to call method, or nil when any
// authenticated account may.
func Roles(method string) []model.Role {
	service, verb := splitMethod(method)
	switch {
	case service == rpc.UsersService:
		return adminOnly
	case service == rpc.DoctorsService && mutatingVerb[verb]:
		return adminOnly
	case service == rpc.PaymentsService && verb == "Create":
		return adminOrDesk
	case service == rpc.MedicalRecordsService && mutatingVerb[verb]:
		return adminOrDoc
	}
	return nil
}

func splitMethod(full string) (service, method string) {
	full = strings.TrimPrefix(full, "/")
	service, method, _ = strings.Cut(full, "/")
	return service, method
}

func allowed(role model.Role, roles []model.Role) bool {
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Auth checks the bearer token on every call outside the open set, attaches
// the account to the context and enforces the per-method role policy.
func Auth(a Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = strings.TrimSpace(strings.TrimPrefix(vals[0], "Bearer "))
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		u, err := a.Authenticate(ctx, raw)
		if err != nil {
			if apperr.KindOf(err) == apperr.Unauthorized {
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
			return nil, status.Error(codes.Internal, "internal error")
		}
		noteUser(ctx, u.ID)
		if !allowed(u.Role, Roles(info.FullMethod)) {
			return nil, status.Errorf(codes.PermissionDenied, "role %s may not call %s", u.Role, info.FullMethod)
		}

		return next(WithUser(ctx, u), req)
	}
}
