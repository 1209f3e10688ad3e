// README: Custom gin binding rules.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tourbook/internal/modules/booking"
	"tourbook/internal/types"
)

var serviceTypeValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := types.ParseServiceType(v)
	return err == nil
}

var paymentStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(string)
	return ok && booking.PaymentStatus(v).Valid()
}

var bookingStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(string)
	return ok && booking.Status(v).Valid()
}

var clockTimeValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse("15:04", v)
	return err == nil
}

// RegisterValidators installs the servicetype, paymentstatus, bookingstatus
// and clocktime rules on gin's validator. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	rules := map[string]validator.Func{
		"servicetype":   serviceTypeValidatorFunc,
		"paymentstatus": paymentStatusValidatorFunc,
		"bookingstatus": bookingStatusValidatorFunc,
		"clocktime":     clockTimeValidatorFunc,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
