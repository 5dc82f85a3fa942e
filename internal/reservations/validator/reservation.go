package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stayd/pkg/logger"
	"stayd/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateCreate checks the booking creation request: struct tags first,
// then the date-range semantics. A valid request yields the parsed
// half-open interval.
func (v *ReservationValidator) ValidateCreate(req *model.CreateBookingRequest, today time.Time) (model.DateInterval, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return model.DateInterval{}, v.translateValidationErrors(validationErrs)
		}
		return model.DateInterval{}, err
	}

	interval, err := model.ParseDateInterval(req.StartDate, req.EndDate)
	if err != nil {
		return model.DateInterval{}, ValidationErrors{
			ValidationError{Field: "start_date", Message: err.Error()},
		}
	}

	if !interval.IsValid() {
		return model.DateInterval{}, ValidationErrors{
			ValidationError{Field: "end_date", Message: "end_date must be after start_date"},
		}
	}

	if interval.Start.Before(model.Day(today)) {
		return model.DateInterval{}, ValidationErrors{
			ValidationError{Field: "start_date", Message: "start_date cannot be in the past"},
		}
	}

	return interval, nil
}

// ValidateAvailabilityWindow checks an availability query window against
// the configured maximum span in days.
func (v *ReservationValidator) ValidateAvailabilityWindow(window model.DateInterval, maxDays int) error {
	if !window.IsValid() {
		return ValidationErrors{
			ValidationError{Field: "end_date", Message: "end_date must be after start_date"},
		}
	}
	if window.Nights() > maxDays {
		return ValidationErrors{
			ValidationError{
				Field:   "end_date",
				Message: fmt.Sprintf("availability window cannot exceed %d days", maxDays),
			},
		}
	}
	return nil
}

func (v *ReservationValidator) ValidatePaymentResult(result *model.PaymentResult) error {
	if err := v.validate.Struct(result); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be an ISO date (YYYY-MM-DD)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "len":
			message = fmt.Sprintf("%s must be exactly %s characters", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
