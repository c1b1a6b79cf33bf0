package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/BenZehavi423/smart-dashboard/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type EventValidator struct {
	validate *validator.Validate
}

func NewEventValidator() *EventValidator {
	return &EventValidator{
		validate: validator.New(),
	}
}

// ValidateEditRequest checks an inbound start_editing/stop_editing payload.
// A failure is a protocol error on the offending request only.
func (v *EventValidator) ValidateEditRequest(req *model.EditRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed validation on '%s'", fe.Tag()),
			}
		}
		return err
	}
	return nil
}
