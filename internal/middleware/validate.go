package middleware

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-management-api/internal/model"
)

// NewValidator returns a validator that reports JSON field names and treats
// model.Date as the time it wraps, so `required` rejects a missing date.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(model.Date); ok {
			return d.Time
		}
		return nil
	}, model.Date{})
	return v
}

// Validate checks request structs against their `validate` tags. Failures
// become InvalidArgument carrying a BadRequest detail with one violation
// per field.
func Validate(v *validator.Validate) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if err := validateStruct(v, req); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func validateStruct(v *validator.Validate, req any) error {
	rv := reflect.ValueOf(req)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return status.Error(codes.InvalidArgument, "empty request")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return BadRequest(verrs)
}

// BadRequest converts validator errors into a status with field violations.
func BadRequest(verrs validator.ValidationErrors) error {
	br := &errdetails.BadRequest{}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		fields = append(fields, field)
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       field,
			Description: describe(fe),
		})
	}
	st := status.New(codes.InvalidArgument, "invalid request: "+strings.Join(fields, ", "))
	if withDetails, err := st.WithDetails(br); err == nil {
		st = withDetails
	}
	return st.Err()
}

// fieldPath drops the leading struct name and any embedded page struct:
// "CreatePatientRequest.full_name" -> "full_name".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "PageRequest" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "json":
		return "must be valid JSON"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
