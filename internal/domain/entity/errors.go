package entity

import (
	"errors"
	"fmt"
)

// ValidationError ошибка некорректных входных данных.
// Значения никогда не исправляются молча, ошибка всегда возвращается вызывающему.
type ValidationError struct {
	Field  string // имя поля
	Reason string // причина отказа
}

// NewValidationError создаёт ошибку валидации для поля.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation сообщает, является ли err (или её причина) ошибкой валидации.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
