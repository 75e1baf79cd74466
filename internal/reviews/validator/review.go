package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

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

type ReviewValidator struct {
	validate *validator.Validate
}

func NewReviewValidator() *ReviewValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &ReviewValidator{validate: v}
}

func (v *ReviewValidator) Validate(req *model.ReviewRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			var out ValidationErrors
			for _, fe := range validationErrs {
				out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
			}
			return out
		}
		return err
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "rating":
		return "rating must be between 1 and 5"
	case "comment":
		return fmt.Sprintf("comment must be at most %s characters", fe.Param())
	}
	return fe.Error()
}
