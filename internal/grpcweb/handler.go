package grpcweb

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"clinic-management-api/internal/rpc"
)

const (
	contentType = "application/grpc-web+json"

	dataFlag    byte = 0x00
	trailerFlag byte = 0x80
)

// Bridge translates gRPC-Web (browser HTTP/1.1) into native gRPC calls on
// a client connection. Payloads are JSON and pass through untouched.
type Bridge struct {
	conn grpc.ClientConnInterface
	log  zerolog.Logger
	done func() error
}

// New dials the gRPC server at addr (e.g. "localhost:50051").
func New(addr string, log zerolog.Logger) (*Bridge, error) {
	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	return &Bridge{conn: conn, log: log, done: conn.Close}, nil
}

// NewWithConn wraps an existing connection, which the caller keeps owning.
func NewWithConn(conn grpc.ClientConnInterface, log zerolog.Logger) *Bridge {
	return &Bridge{conn: conn, log: log}
}

func (b *Bridge) Close() error {
	if b.done == nil {
		return nil
	}
	return b.done()
}

// Handle serves POST /<package.Service>/<Method>.
func (b *Bridge) Handle(c echo.Context) error {
	r := c.Request()
	w := c.Response()

	ct := r.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, "application/grpc-web") {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "not grpc-web")
	}
	if strings.HasPrefix(ct, "application/grpc-web+proto") {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "only "+contentType+" is served")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeStatus(w, status.New(codes.Internal, "read body failed"))
		return nil
	}
	payload, err := readFrame(body)
	if err != nil {
		writeStatus(w, status.New(codes.InvalidArgument, err.Error()))
		return nil
	}

	md := metadata.MD{}
	if vals := r.Header.Values(echo.HeaderAuthorization); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	md.Set("x-forwarded-for", c.RealIP())
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		md.Set("x-request-id", rid)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st := status.Convert(err)
		b.log.Debug().Str("path", r.URL.Path).Str("code", st.Code().String()).Msg("grpc-web call failed")
		writeStatus(w, st)
		return nil
	}
	writeSuccess(w, resp.data)
	return nil
}

// readFrame extracts the first data frame: 1-byte flag, 4-byte big-endian
// length, message.
func readFrame(body []byte) ([]byte, error) {
	if len(body) < 5 {
		return nil, fmt.Errorf("body too short")
	}
	if body[0]&trailerFlag != 0 {
		return nil, fmt.Errorf("expected a data frame")
	}
	n := binary.BigEndian.Uint32(body[1:5])
	if int(n)+5 > len(body) {
		return nil, fmt.Errorf("incomplete frame")
	}
	return body[5 : 5+n], nil
}

// rawMsg wraps already-encoded JSON bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through without marshal/unmarshal. It reports the
// JSON codec's name so the server decodes the frame as JSON.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string { return rpc.CodecName }

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

func trailer(st *status.Status) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "grpc-status:%d\r\n", st.Code())
	if msg := st.Message(); msg != "" {
		fmt.Fprintf(&sb, "grpc-message:%s\r\n", url.PathEscape(msg))
	}
	if len(st.Details()) > 0 {
		if raw, err := proto.Marshal(st.Proto()); err == nil {
			fmt.Fprintf(&sb, "grpc-status-details-bin:%s\r\n", base64.RawStdEncoding.EncodeToString(raw))
		}
	}
	return frame(trailerFlag, []byte(sb.String()))
}

func writeStatus(w http.ResponseWriter, st *status.Status) {
	w.Header().Set(echo.HeaderContentType, contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(trailer(st))
}

func writeSuccess(w http.ResponseWriter, data []byte) {
	w.Header().Set(echo.HeaderContentType, contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(frame(dataFlag, data))
	w.Write(trailer(status.New(codes.OK, "")))
}
