package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

// check runs the struct tags of an operation's parameters and converts the
// first failure into a domain validation error
func (e *Engine) check(params interface{}) error {
	err := e.validate.Struct(params)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s (value: '%v')", fe.Tag(), fe.Value()))
	}
	return shared.NewValidationError(strings.ToLower(validationErrs[0].Field()), strings.Join(messages, "; "))
}
