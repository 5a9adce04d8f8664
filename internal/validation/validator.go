// Package validation exposes the process-wide go-playground validator
// applied to inbound request DTOs before any handler logic runs.
package validation

import (
	"github.com/go-playground/validator/v10"
)

var Validator = validator.New()

func ValidateStruct(s interface{}) error {
	return Validator.Struct(s)
}
