package services

import (
	"errors"
	"strings"

	"github.com/teraturizm/transfer-admin/pkg/validator"
)

// validateStruct runs the shared tag validation and converts constraint
// failures into a *ValidationError
func validateStruct(s interface{}) error {
	err := validator.Struct(s)
	if err == nil {
		return nil
	}

	var fields validator.FieldErrors
	if errors.As(err, &fields) {
		return &ValidationError{Message: fields.Error(), Fields: fields}
	}
	return err
}

// trimOptional trims *s and returns nil when nothing is left
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
