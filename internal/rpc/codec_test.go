package rpc_test

import (
	"strings"
	"testing"

	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"clinic-management-api/internal/model"
	"clinic-management-api/internal/rpc"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(rpc.CodecName)
	if c == nil {
		t.Fatal("json codec not registered")
	}
	if c.Name() != "json" {
		t.Errorf("name = %q", c.Name())
	}
}

func TestCodecStructs(t *testing.T) {
	c := rpc.Codec{}
	b, err := c.Marshal(&model.Payment{ID: 7, DoctorServiceFee: 15000, MedicineFee: 7550, TotalAmount: 22550})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"total_amount":225.50`) {
		t.Errorf("payment json = %s", b)
	}

	var req rpc.CreatePaymentRequest
	if err := c.Unmarshal([]byte(`{"patient_id":3,"doctor_service_fee":"150.00","medicine_fee":75.5}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.PatientID != 3 || req.DoctorServiceFee != 15000 || req.MedicineFee != 7550 {
		t.Errorf("decoded %+v", req)
	}
}

func TestCodecEmptyFrame(t *testing.T) {
	var req rpc.Empty
	if err := (rpc.Codec{}).Unmarshal(nil, &req); err != nil {
		t.Errorf("empty frame: %v", err)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	var req rpc.IDRequest
	if err := (rpc.Codec{}).Unmarshal([]byte(`{"id":`), &req); err == nil {
		t.Error("expected error for truncated json")
	}
}

func TestCodecProtoMessages(t *testing.T) {
	c := rpc.Codec{}
	b, err := c.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "SERVING") {
		t.Errorf("protojson output = %s", b)
	}
	var out healthpb.HealthCheckResponse
	if err := c.Unmarshal(b, &out); err != nil || out.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("round trip: %v, %v", out.Status, err)
	}
}

func TestFullMethod(t *testing.T) {
	if got := rpc.FullMethod(rpc.PatientsService, "Search"); got != "/clinic.v1.Patients/Search" {
		t.Errorf("got %q", got)
	}
}

func TestDescriptorsCoverEveryMethod(t *testing.T) {
	want := map[string]int{
		rpc.AuthServiceDesc.ServiceName:           2,
		rpc.UsersServiceDesc.ServiceName:          5,
		rpc.PatientsServiceDesc.ServiceName:       6,
		rpc.DoctorsServiceDesc.ServiceName:        6,
		rpc.MedicalRecordsServiceDesc.ServiceName: 7,
		rpc.PaymentsServiceDesc.ServiceName:       6,
		rpc.DashboardServiceDesc.ServiceName:      3,
	}
	descs := []struct {
		name string
		n    int
	}{
		{rpc.AuthServiceDesc.ServiceName, len(rpc.AuthServiceDesc.Methods)},
		{rpc.UsersServiceDesc.ServiceName, len(rpc.UsersServiceDesc.Methods)},
		{rpc.PatientsServiceDesc.ServiceName, len(rpc.PatientsServiceDesc.Methods)},
		{rpc.DoctorsServiceDesc.ServiceName, len(rpc.DoctorsServiceDesc.Methods)},
		{rpc.MedicalRecordsServiceDesc.ServiceName, len(rpc.MedicalRecordsServiceDesc.Methods)},
		{rpc.PaymentsServiceDesc.ServiceName, len(rpc.PaymentsServiceDesc.Methods)},
		{rpc.DashboardServiceDesc.ServiceName, len(rpc.DashboardServiceDesc.Methods)},
	}
	for _, d := range descs {
		if want[d.name] != d.n {
			t.Errorf("%s: %d methods, want %d", d.name, d.n, want[d.name])
		}
	}
}
