package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse describes one field that failed validation.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// The builtin "required" tag cannot see through uuid.UUID (a [16]byte
	// array whose zero value is not "empty"), so non-nil checks on id
	// fields use this tag instead.
	v.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})
	return v
}

// ValidateStruct runs the struct tags and flattens the failures.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var out []*ErrorResponse
	if err := validate.Struct(data); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			out = append(out, &ErrorResponse{
				FailedField: fe.StructNamespace(),
				Tag:         fe.Tag(),
				Value:       fe.Param(),
			})
		}
	}
	return out
}
