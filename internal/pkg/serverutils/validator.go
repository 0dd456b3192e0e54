package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks struct tags on a request DTO and converts the first
// failure into a 400 ApiError.
func ValidateRequest(request interface{}) error {
	err := validate.Struct(request)
	if err == nil {
		return nil
	}

	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return NewApiError(fiber.StatusBadRequest,
			fmt.Sprintf("field '%s' failed on rule '%s'", fe.Field(), fe.Tag()))
	}

	return NewApiError(fiber.StatusBadRequest, "invalid request body")
}
