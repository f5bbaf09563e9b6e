package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"storefront-service/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrBannerNotFound    = errors.New("banner not found")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartClosed        = errors.New("cart service is shutting down")

	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrOutOfStock        = errors.New("requested quantity is not available")
	ErrProductInactive   = errors.New("product is not available for sale")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidPromotion  = errors.New("promotion code is not valid")
	ErrCategoryInUse     = errors.New("category still has products")
	ErrSlugTaken         = errors.New("slug is already in use")
	ErrSelfDemotion      = errors.New("admins cannot remove their own admin role")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrStorageDisabled   = errors.New("image storage is not configured")
)

// ValidationError reports invalid request fields. Field and Message describe
// the first one; Fields lists all of them when more than one was checked.
type ValidationError struct {
	Field   string
	Message string
	Fields  []models.FieldError
}

// Details lists every invalid field, falling back to Field alone
func (e *ValidationError) Details() []models.FieldError {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	if e.Field == "" {
		return nil
	}
	return []models.FieldError{{Field: e.Field, Message: e.Message}}
}

func newValidationError(fields []models.FieldError) *ValidationError {
	return &ValidationError{Field: fields[0].Field, Message: fields[0].Message, Fields: fields}
}

// withPrefix names every field under prefix, e.g. "city" becomes "address.city"
func (e *ValidationError) withPrefix(prefix string) *ValidationError {
	fields := e.Details()
	prefixed := make([]models.FieldError, len(fields))
	for i, f := range fields {
		prefixed[i] = models.FieldError{Field: prefix + "." + f.Field, Message: f.Message}
	}
	if len(prefixed) == 0 {
		return e
	}
	return newValidationError(prefixed)
}

// joinValidation merges the field errors of errs. A non-validation error
// wins over field errors and is returned as is.
func joinValidation(errs ...error) error {
	var fields []models.FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = append(fields, verr.Details()...)
	}
	if len(fields) == 0 {
		return nil
	}
	return newValidationError(fields)
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags on v and reports every failure by
// its JSON field path.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Field: jsonFieldPath(fe.Namespace()), Message: validationMessage(fe)})
	}
	return newValidationError(fields)
}

// jsonFieldPath turns "CheckoutRequest.Address.Line1" into "address.line1"
func jsonFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
