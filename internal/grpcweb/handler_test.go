package grpcweb_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"

	"clinic-management-api/internal/auth"
	"clinic-management-api/internal/grpcweb"
	"clinic-management-api/internal/handler"
	"clinic-management-api/internal/middleware"
	"clinic-management-api/internal/model"
	"clinic-management-api/internal/monitoring"
	"clinic-management-api/internal/rpc"
	"clinic-management-api/internal/service"
	"clinic-management-api/internal/service/servicetest"
	"clinic-management-api/internal/store"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }
func (f fakeDB) Stats() store.PoolStats   { return store.PoolStats{TotalConns: 3, MaxConns: 10} }

func setup(t *testing.T, db grpcweb.HealthChecker) (*echo.Echo, *service.Service) {
	t.Helper()
	now := time.Date(2025, 6, 11, 10, 30, 0, 0, time.UTC)
	repo := servicetest.New()
	repo.SetClock(func() time.Time { return now })
	svc := service.New(repo, auth.NewTokens("bridge-test-secret-0123456789", time.Hour),
		service.WithLocation(time.UTC),
		service.WithClock(func() time.Time { return now }),
	)

	m := monitoring.New()
	srv, _ := handler.NewServer(handler.New(svc, zerolog.Nop()), zerolog.Nop(), m, middleware.NewRateLimiter(100, 100))
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	e := grpcweb.NewGateway(grpcweb.GatewayConfig{
		Bridge:      grpcweb.NewWithConn(conn, zerolog.Nop()),
		Health:      db,
		Metrics:     m,
		Log:         zerolog.Nop(),
		CORSOrigins: []string{"*"},
	})
	return e, svc
}

func frame(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := make([]byte, 5+len(body))
	binary.BigEndian.PutUint32(out[1:5], uint32(len(body)))
	copy(out[5:], body)
	return out
}

type reply struct {
	data     []byte
	trailers map[string]string
}

func parseReply(t *testing.T, body []byte) reply {
	t.Helper()
	r := reply{trailers: map[string]string{}}
	for len(body) > 0 {
		if len(body) < 5 {
			t.Fatalf("truncated frame header")
		}
		flag := body[0]
		n := int(binary.BigEndian.Uint32(body[1:5]))
		if len(body) < 5+n {
			t.Fatalf("truncated frame")
		}
		msg := body[5 : 5+n]
		body = body[5+n:]
		if flag&0x80 == 0 {
			r.data = msg
			continue
		}
		for _, line := range strings.Split(strings.TrimSpace(string(msg)), "\r\n") {
			k, v, _ := strings.Cut(line, ":")
			r.trailers[k] = v
		}
	}
	return r
}

func call(t *testing.T, e *echo.Echo, path, token string, req any) reply {
	t.Helper()
	hr := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(frame(t, req)))
	hr.Header.Set("Content-Type", "application/grpc-web+json")
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, hr)
	if rec.Code != http.StatusOK {
		t.Fatalf("http status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/grpc-web+json" {
		t.Errorf("content type = %q", got)
	}
	return parseReply(t, rec.Body.Bytes())
}

func TestBridgeLoginAndCall(t *testing.T) {
	e, svc := setup(t, fakeDB{})
	if _, err := svc.CreateUser(context.Background(), service.CreateUserInput{
		Username: "frontdesk", Password: "testpass123", FullName: "Front Desk", Role: model.RoleReceptionist,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	r := call(t, e, "/clinic.v1.Auth/Login", "", rpc.LoginRequest{Username: "frontdesk", Password: "testpass123"})
	if r.trailers["grpc-status"] != "0" {
		t.Fatalf("login status = %q (%s)", r.trailers["grpc-status"], r.trailers["grpc-message"])
	}
	var login rpc.LoginResponse
	if err := json.Unmarshal(r.data, &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" || login.User == nil || login.User.Username != "frontdesk" {
		t.Fatalf("unexpected login response: %s", r.data)
	}

	r = call(t, e, "/clinic.v1.Patients/GetAll", login.Token, rpc.PageRequest{})
	if r.trailers["grpc-status"] != "0" {
		t.Fatalf("list status = %q (%s)", r.trailers["grpc-status"], r.trailers["grpc-message"])
	}
	var list model.List[model.Patient]
	if err := json.Unmarshal(r.data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Data == nil || list.Total != 0 {
		t.Errorf("unexpected list: %s", r.data)
	}
}

func TestBridgeMissingToken(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	r := call(t, e, "/clinic.v1.Patients/GetAll", "", rpc.PageRequest{})
	if r.trailers["grpc-status"] != "16" {
		t.Errorf("expected Unauthenticated (16), got %q", r.trailers["grpc-status"])
	}
	if r.data != nil {
		t.Errorf("expected no data frame, got %s", r.data)
	}
}

func TestBridgeValidationDetails(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	r := call(t, e, "/clinic.v1.Auth/Login", "", rpc.LoginRequest{})
	if r.trailers["grpc-status"] != "3" {
		t.Fatalf("expected InvalidArgument (3), got %q", r.trailers["grpc-status"])
	}

	raw, err := base64.RawStdEncoding.DecodeString(r.trailers["grpc-status-details-bin"])
	if err != nil {
		t.Fatalf("decode details: %v", err)
	}
	st := &spb.Status{}
	if err := proto.Unmarshal(raw, st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if len(st.GetDetails()) != 1 {
		t.Fatalf("expected one detail, got %d", len(st.GetDetails()))
	}
	br := &errdetails.BadRequest{}
	if err := st.GetDetails()[0].UnmarshalTo(br); err != nil {
		t.Fatalf("unpack bad request: %v", err)
	}
	if len(br.GetFieldViolations()) != 2 {
		t.Errorf("expected username and password violations, got %v", br.GetFieldViolations())
	}
}

func TestBridgeRejectsProto(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	hr := httptest.NewRequest(http.MethodPost, "/clinic.v1.Auth/Login", bytes.NewReader([]byte{0, 0, 0, 0, 0}))
	hr.Header.Set("Content-Type", "application/grpc-web+proto")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, hr)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}

func TestBridgeShortBody(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	hr := httptest.NewRequest(http.MethodPost, "/clinic.v1.Auth/Login", bytes.NewReader([]byte{0, 0}))
	hr.Header.Set("Content-Type", "application/grpc-web+json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, hr)
	r := parseReply(t, rec.Body.Bytes())
	if r.trailers["grpc-status"] != "3" {
		t.Errorf("expected InvalidArgument (3), got %q", r.trailers["grpc-status"])
	}
}

func TestPreflight(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	hr := httptest.NewRequest(http.MethodOptions, "/clinic.v1.Auth/Login", nil)
	hr.Header.Set("Origin", "http://localhost:3000")
	hr.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, hr)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing Access-Control-Allow-Origin")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		db   fakeDB
		want int
	}{
		{"up", fakeDB{}, http.StatusOK},
		{"down", fakeDB{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := setup(t, tt.db)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if rec.Header().Get(echo.HeaderXRequestID) == "" {
				t.Error("missing request id")
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `clinic_http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Errorf("health request not counted:\n%s", rec.Body.String())
	}
}

func TestRealIPIgnoresForwardedHeader(t *testing.T) {
	e, _ := setup(t, fakeDB{})
	hr := httptest.NewRequest(http.MethodGet, "/health", nil)
	hr.RemoteAddr = "198.51.100.7:52000"
	hr.Header.Set("X-Forwarded-For", "10.9.8.7")
	hr.Header.Set("X-Real-IP", "10.9.8.6")

	if got := e.IPExtractor(hr); got != "198.51.100.7" {
		t.Errorf("real ip = %q, want the socket address", got)
	}
}
