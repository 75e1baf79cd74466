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

type ServiceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewServiceValidator(log *logger.Logger) *ServiceValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log.Info("Service validator initialized successfully")

	return &ServiceValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ServiceValidator) Validate(svc *model.Service) error {
	return v.validateStruct(svc)
}

func (v *ServiceValidator) ValidateUpdate(u *model.ServiceUpdate) error {
	return v.validateStruct(u)
}

func (v *ServiceValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ServiceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
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
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
