package inbound

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/calshare/server/internal/model"
	apperrors "github.com/calshare/server/internal/utils/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return model.Weekday(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// Validate checks an input struct against its validate tags. Failures are
// returned as a validation AppError listing the offending fields.
func Validate(in any) error {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.ValidationError(err.Error())
	}

	details := make(map[string]any, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe)
		msg := describe(fe)
		details[field] = msg
		msgs = append(msgs, field+" "+msg)
	}
	return apperrors.ValidationError(strings.Join(msgs, "; ")).WithDetails(details)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters or items", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters or items", fe.Param())
	case "email":
		return "must be a valid email"
	case "weekday":
		return fmt.Sprintf("unknown day %q", fe.Value())
	default:
		return "is invalid"
	}
}
