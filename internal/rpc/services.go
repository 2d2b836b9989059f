// Package rpc defines the clinic's gRPC surface without generated code:
// wire messages are plain Go structs, the service descriptors below are
// written by hand, and Codec carries the messages as JSON.
package rpc

import (
	"context"

	"google.golang.org/grpc"

	"clinic-management-api/internal/model"
)

const (
	AuthService           = "clinic.v1.Auth"
	UsersService          = "clinic.v1.Users"
	PatientsService       = "clinic.v1.Patients"
	DoctorsService        = "clinic.v1.Doctors"
	MedicalRecordsService = "clinic.v1.MedicalRecords"
	PaymentsService       = "clinic.v1.Payments"
	DashboardService      = "clinic.v1.Dashboard"
)

// ServiceNames lists every clinic service, in registration order.
func ServiceNames() []string {
	return []string{
		AuthService, UsersService, PatientsService, DoctorsService,
		MedicalRecordsService, PaymentsService, DashboardService,
	}
}

// FullMethod renders "/<service>/<method>", the form interceptors see.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

type AuthServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
}

type UsersServer interface {
	Create(context.Context, *CreateUserRequest) (*model.User, error)
	GetAll(context.Context, *ListUsersRequest) (*model.List[model.User], error)
	GetById(context.Context, *IDRequest) (*model.User, error)
	Update(context.Context, *UpdateUserRequest) (*model.User, error)
	Delete(context.Context, *IDRequest) (*DeleteResponse, error)
}

type PatientsServer interface {
	Create(context.Context, *CreatePatientRequest) (*model.Patient, error)
	GetAll(context.Context, *PageRequest) (*model.List[model.Patient], error)
	GetById(context.Context, *IDRequest) (*model.Patient, error)
	Update(context.Context, *UpdatePatientRequest) (*model.Patient, error)
	Delete(context.Context, *IDRequest) (*DeleteResponse, error)
	Search(context.Context, *SearchPatientsRequest) (*model.List[model.Patient], error)
}

type DoctorsServer interface {
	Create(context.Context, *CreateDoctorRequest) (*model.Doctor, error)
	GetAll(context.Context, *PageRequest) (*model.List[model.Doctor], error)
	GetById(context.Context, *IDRequest) (*model.Doctor, error)
	Update(context.Context, *UpdateDoctorRequest) (*model.Doctor, error)
	Delete(context.Context, *IDRequest) (*DeleteResponse, error)
	GetPatients(context.Context, *IDRequest) (*Items[model.Patient], error)
}

type MedicalRecordsServer interface {
	Create(context.Context, *CreateRecordRequest) (*model.MedicalRecord, error)
	GetAll(context.Context, *ListRecordsRequest) (*model.List[model.MedicalRecord], error)
	GetById(context.Context, *IDRequest) (*model.MedicalRecord, error)
	Update(context.Context, *UpdateRecordRequest) (*model.MedicalRecord, error)
	Delete(context.Context, *IDRequest) (*DeleteResponse, error)
	GetPatientHistory(context.Context, *PatientRequest) (*Items[model.MedicalRecord], error)
	GetTodaysRecords(context.Context, *TodayRequest) (*Items[model.MedicalRecord], error)
}

type PaymentsServer interface {
	Create(context.Context, *CreatePaymentRequest) (*model.Payment, error)
	GetAll(context.Context, *ListPaymentsRequest) (*model.List[model.Payment], error)
	GetById(context.Context, *IDRequest) (*model.Payment, error)
	GetHistory(context.Context, *PatientRequest) (*Items[model.Payment], error)
	GetReceipt(context.Context, *ReceiptRequest) (*model.Receipt, error)
	GetStatistics(context.Context, *StatisticsRequest) (*model.PaymentStatistics, error)
}

type DashboardServer interface {
	GetStats(context.Context, *Empty) (*model.DashboardStats, error)
	GetRecentActivities(context.Context, *RecentActivitiesRequest) (*Items[model.Activity], error)
	GetTodaysSchedule(context.Context, *TodayRequest) (*Items[model.MedicalRecord], error)
}

// unary builds the MethodDesc for one method. call is usually a method
// expression such as PatientsServer.Search.
func unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := FullMethod(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthService,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthService, "Login", AuthServer.Login),
		unary(AuthService, "ValidateToken", AuthServer.ValidateToken),
	},
	Metadata: "clinic/v1/auth",
}

var UsersServiceDesc = grpc.ServiceDesc{
	ServiceName: UsersService,
	HandlerType: (*UsersServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(UsersService, "Create", UsersServer.Create),
		unary(UsersService, "GetAll", UsersServer.GetAll),
		unary(UsersService, "GetById", UsersServer.GetById),
		unary(UsersService, "Update", UsersServer.Update),
		unary(UsersService, "Delete", UsersServer.Delete),
	},
	Metadata: "clinic/v1/users",
}

var PatientsServiceDesc = grpc.ServiceDesc{
	ServiceName: PatientsService,
	HandlerType: (*PatientsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(PatientsService, "Create", PatientsServer.Create),
		unary(PatientsService, "GetAll", PatientsServer.GetAll),
		unary(PatientsService, "GetById", PatientsServer.GetById),
		unary(PatientsService, "Update", PatientsServer.Update),
		unary(PatientsService, "Delete", PatientsServer.Delete),
		unary(PatientsService, "Search", PatientsServer.Search),
	},
	Metadata: "clinic/v1/patients",
}

var DoctorsServiceDesc = grpc.ServiceDesc{
	ServiceName: DoctorsService,
	HandlerType: (*DoctorsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(DoctorsService, "Create", DoctorsServer.Create),
		unary(DoctorsService, "GetAll", DoctorsServer.GetAll),
		unary(DoctorsService, "GetById", DoctorsServer.GetById),
		unary(DoctorsService, "Update", DoctorsServer.Update),
		unary(DoctorsService, "Delete", DoctorsServer.Delete),
		unary(DoctorsService, "GetPatients", DoctorsServer.GetPatients),
	},
	Metadata: "clinic/v1/doctors",
}

var MedicalRecordsServiceDesc = grpc.ServiceDesc{
	ServiceName: MedicalRecordsService,
	HandlerType: (*MedicalRecordsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MedicalRecordsService, "Create", MedicalRecordsServer.Create),
		unary(MedicalRecordsService, "GetAll", MedicalRecordsServer.GetAll),
		unary(MedicalRecordsService, "GetById", MedicalRecordsServer.GetById),
		unary(MedicalRecordsService, "Update", MedicalRecordsServer.Update),
		unary(MedicalRecordsService, "Delete", MedicalRecordsServer.Delete),
		unary(MedicalRecordsService, "GetPatientHistory", MedicalRecordsServer.GetPatientHistory),
		unary(MedicalRecordsService, "GetTodaysRecords", MedicalRecordsServer.GetTodaysRecords),
	},
	Metadata: "clinic/v1/medical_records",
}

var PaymentsServiceDesc = grpc.ServiceDesc{
	ServiceName: PaymentsService,
	HandlerType: (*PaymentsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(PaymentsService, "Create", PaymentsServer.Create),
		unary(PaymentsService, "GetAll", PaymentsServer.GetAll),
		unary(PaymentsService, "GetById", PaymentsServer.GetById),
		unary(PaymentsService, "GetHistory", PaymentsServer.GetHistory),
		unary(PaymentsService, "GetReceipt", PaymentsServer.GetReceipt),
		unary(PaymentsService, "GetStatistics", PaymentsServer.GetStatistics),
	},
	Metadata: "clinic/v1/payments",
}

var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardService,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(DashboardService, "GetStats", DashboardServer.GetStats),
		unary(DashboardService, "GetRecentActivities", DashboardServer.GetRecentActivities),
		unary(DashboardService, "GetTodaysSchedule", DashboardServer.GetTodaysSchedule),
	},
	Metadata: "clinic/v1/dashboard",
}

// Servers bundles one implementation per service for Register.
type Servers struct {
	Auth           AuthServer
	Users          UsersServer
	Patients       PatientsServer
	Doctors        DoctorsServer
	MedicalRecords MedicalRecordsServer
	Payments       PaymentsServer
	Dashboard      DashboardServer
}

func Register(s grpc.ServiceRegistrar, srv Servers) {
	s.RegisterService(&AuthServiceDesc, srv.Auth)
	s.RegisterService(&UsersServiceDesc, srv.Users)
	s.RegisterService(&PatientsServiceDesc, srv.Patients)
	s.RegisterService(&DoctorsServiceDesc, srv.Doctors)
	s.RegisterService(&MedicalRecordsServiceDesc, srv.MedicalRecords)
	s.RegisterService(&PaymentsServiceDesc, srv.Payments)
	s.RegisterService(&DashboardServiceDesc, srv.Dashboard)
}

// Invoke calls a unary method with the JSON codec and decodes the reply.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(service, method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
