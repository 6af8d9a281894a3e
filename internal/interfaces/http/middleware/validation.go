package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/feedlot/backend/internal/infrastructure/logger"
	"github.com/feedlot/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator configures gin's validator: JSON field names in errors and
// numeric rules (gt, gte, ...) on decimal.Decimal fields
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidations(v)
	}
}

func registerValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

// decimalValue exposes a decimal to the numeric validators as a float64.
// Precision loss only affects the comparison, never the bound value.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// FormatValidationErrors lists each rejected field of err with a readable message
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	errors.As(err, &fieldErrs)

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers 400 for a failed bind. Field rule violations
// carry details; anything else (malformed JSON, a bad date) does not.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader(logger.RequestIDHeader)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, err.Error(), requestID))
}

// boundMessages phrase the size rules; %s is the bound and %s the unit
var boundMessages = map[string]string{
	"min": "Must be at least %s%s",
	"max": "Must be at most %s%s",
	"gt":  "Must be greater than %s%s",
	"gte": "Must be greater than or equal to %s%s",
	"lt":  "Must be less than %s%s",
	"lte": "Must be less than or equal to %s%s",
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + fe.Param()
	}

	format, ok := boundMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
		if fe.Tag() == "min" {
			return fmt.Sprintf("Must contain at least %s items", fe.Param())
		}
	}
	return fmt.Sprintf(format, fe.Param(), unit)
}
