// Package validation holds the one validator instance shared by request binding and the service layer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	once        sync.Once
	engine      *validator.Validate
	phoneRegion = utils.DefaultPhoneRegion

	// ErrValidation wraps every failure returned by Struct.
	ErrValidation = errors.New("validation failed")
)

// SetPhoneRegion sets the region used by the "phone" tag. Call before serving requests.
func SetPhoneRegion(region string) {
	if region != "" {
		phoneRegion = strings.ToUpper(region)
	}
}

// Engine returns the shared validator, building it on first use.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "caldate", func(fl validator.FieldLevel) bool {
			_, err := utils.ParseCalendarDate(fl.Field().String(), nil)
			return err == nil
		})
		mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
			return utils.IsClock(fl.Field().String())
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			_, err := utils.NormalizePhone(fl.Field().String(), phoneRegion)
			return err == nil
		})
		engine = v
	})
	return engine
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %q validation: %v", tag, err))
	}
}

// Struct validates a request DTO. Failures wrap ErrValidation and carry readable field details.
func Struct(obj interface{}) error {
	if err := Engine().Struct(obj); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, Describe(err))
	}
	return nil
}

// Describe renders validator errors as "field: rule" pairs.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule(fe)))
	}
	return strings.Join(parts, "; ")
}

func rule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "caldate":
		return "must be a date (YYYY-MM-DD or DD/MM/YYYY)"
	case "clock":
		return "must be a time (HH:MM)"
	case "phone":
		return "must be a valid phone number"
	case "eqfield":
		return "must match " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "failed " + fe.Tag()
}

// ginValidator adapts the shared engine to gin's binding.StructValidator.
type ginValidator struct{}

func (ginValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return Engine().Struct(obj)
}

func (ginValidator) Engine() any {
	return Engine()
}

// BindGin makes gin's ShouldBind* use the shared engine.
func BindGin() {
	binding.Validator = ginValidator{}
}
