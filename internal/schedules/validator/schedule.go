package validator

import (
	"errors"
	"fmt"
	"strings"

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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}

	log.Info("Schedule validator initialized successfully")

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

// validateClock accepts strict HH:MM, 00:00 to 23:59.
func validateClock(fl validator.FieldLevel) bool {
	_, err := model.ParseClock(fl.Field().String())
	return err == nil
}

func (v *ScheduleValidator) Validate(sc *model.WeeklySchedule) error {
	if err := v.validate.Struct(sc); err != nil {
		return v.translate(err)
	}
	return checkDays(sc.Days)
}

func (v *ScheduleValidator) ValidateUpdate(u *model.ScheduleUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		return v.translate(err)
	}
	return checkDays(u.Days)
}

func (v *ScheduleValidator) ValidateClosedDates(u *model.ClosedDatesUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		return v.translate(err)
	}
	return nil
}

// checkDays applies the per-day ordering rules that struct tags cannot express.
func checkDays(days []model.DaySchedule) error {
	var errs ValidationErrors
	for i, d := range days {
		if err := d.Check(); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("days[%d]", i),
				Message: err.Error(),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ScheduleValidator) translate(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return v.translateValidationErrors(validationErrs)
	}
	return err
}

func (v *ScheduleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "len":
			message = fmt.Sprintf("%s must contain exactly %s entries", err.Field(), err.Param())
		case "unique":
			message = fmt.Sprintf("%s must not repeat a weekday", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be a weekday name (Sunday-Saturday)", err.Field())
		case "clock":
			message = fmt.Sprintf("%s must be in HH:MM 24-hour format", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", err.Field())
		case "max":
			message = fmt.Sprintf("%s must have at most %s entries", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
