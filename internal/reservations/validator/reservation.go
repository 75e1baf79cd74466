package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"probook/pkg/logger"
	"probook/pkg/model"

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
	messages := make([]string, 0, len(v))
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
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks the request shape and its time range relative to now.
// Whether the range fits the professional's hours is decided later.
func (v *ReservationValidator) Validate(req *model.ReservationRequest, now time.Time) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	if !req.StartAt.After(now) {
		errs = append(errs, ValidationError{Field: "start_at", Message: "start_at must be in the future"})
	}
	if req.EndAt != nil && !req.EndAt.After(req.StartAt) {
		errs = append(errs, ValidationError{Field: "end_at", Message: "end_at must be after start_at"})
	} else if req.EndAt != nil && req.DurationMinutes > 0 {
		span := req.EndAt.Truncate(time.Millisecond).Sub(req.StartAt.Truncate(time.Millisecond))
		if span != time.Duration(req.DurationMinutes)*time.Minute {
			errs = append(errs, ValidationError{Field: "end_at", Message: "end_at does not match duration_minutes"})
		}
	}
	if req.ServiceID == "" && req.EndAt == nil && req.DurationMinutes == 0 {
		errs = append(errs, ValidationError{Field: "duration_minutes", Message: "one of service_id, duration_minutes or end_at is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ReservationValidator) ValidateFilter(f *model.ReservationFilter) error {
	var errs ValidationErrors
	for _, s := range f.Statuses {
		if !s.Valid() {
			errs = append(errs, ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)})
		}
	}
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		errs = append(errs, ValidationError{Field: "to", Message: "to must be after from"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
