package validator

import (
	"errors"
	"fmt"
	"reflect"
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

type ProfessionalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewProfessionalValidator(log *logger.Logger) *ProfessionalValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log.Info("Professional validator initialized successfully")

	return &ProfessionalValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ProfessionalValidator) Validate(pro *model.Professional) error {
	if err := v.validate.Struct(pro); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ProfessionalValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be a phone number in international format (e.g. +972501234567)", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone (e.g. Asia/Jerusalem)", err.Field())
		case "min":
			if err.Kind() == reflect.String {
				message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
			}
		case "max":
			if err.Kind() == reflect.String {
				message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
			}
		default:
			message = fmt.Sprintf("%s failed on the '%s' tag", err.Field(), err.Tag())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
