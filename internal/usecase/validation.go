package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// erros com o nome do campo em JSON, que é o que o cliente enviou
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput devolve nil ou um DomainError com a lista de campos inválidos.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &TechnicalError{Code: CodeInternal, Message: "falha ao validar entrada", Err: err}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve := ValidationError{Field: fe.Field(), Message: describe(fe)}
		out = append(out, ve)
		msgs = append(msgs, ve.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: strings.Join(msgs, "; "),
		Status:  http.StatusBadRequest,
		Details: out,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required with " + fe.Param()
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "len":
		return "must have exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain only digits"
	case "latitude", "longitude":
		return "must be a valid " + fe.Tag()
	case "json":
		return "must be valid JSON"
	default:
		return "is invalid"
	}
}
