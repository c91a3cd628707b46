package controller

import (
	"errors"
	"reflect"
)

// Validator is implemented by request DTOs that carry their own validation.
type Validator interface {
	Validate() error
}

// ValidateDTO validates a request DTO. DTOs implementing Validator have
// their Validate method called; validation failures surface as AppError
// with status 400.
func ValidateDTO(dto interface{}) error {
	if dto == nil {
		return NewValidationError("el cuerpo de la petición es obligatorio", nil)
	}

	v := reflect.ValueOf(dto)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return NewValidationError("el cuerpo de la petición es obligatorio", nil)
	}

	validator, ok := dto.(Validator)
	if !ok {
		return nil
	}

	if err := validator.Validate(); err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return err
		}
		return NewValidationError(err.Error(), nil)
	}
	return nil
}
