package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation together with the business
// rules that tags alone cannot express.
type Validator struct {
	validate *validator.Validate
}

// New creates a new validator.
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates any struct against its validate tags.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSubmitTest validates a test submission, combining tag validation
// with per-question business rules.
func (v *Validator) ValidateSubmitTest(req *SubmitTestRequest) ValidationErrors {
	errors := v.Validate(req)

	for i, q := range req.Questions {
		if q.TimeTaken < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].time_taken", i),
				Message: "time taken must not be negative",
				Value:   q.TimeTaken,
				Rule:    "business_logic",
			})
		}
		if strings.TrimSpace(q.Subject) == "" || strings.TrimSpace(q.Topic) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d]", i),
				Message: "subject and topic must not be blank",
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidationError describes a single failed validation rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether any validation failed.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ToValidationErrors converts go-playground validator errors into our type.
func ToValidationErrors(err error) ValidationErrors {
	var result ValidationErrors

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{
			Field:   "request",
			Message: err.Error(),
			Rule:    "struct",
		}}
	}

	for _, fe := range validationErrors {
		result = append(result, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}

	return result
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
