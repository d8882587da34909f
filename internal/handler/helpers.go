package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"drugbee/internal/apierror"
	"drugbee/internal/billing"
	"drugbee/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeBillingError maps billing and repository sentinel errors to HTTP
// responses. Falls back to 400 for anything unrecognized.
func writeBillingError(c *gin.Context, err error) {
	var vErr *billing.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(strings.Join(vErr.Causes, "; ")))
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, repository.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, billing.ErrLineNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, billing.ErrOutOfStock),
		errors.Is(err, billing.ErrInsufficientStock),
		errors.Is(err, billing.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, billing.ErrProductInactive),
		errors.Is(err, billing.ErrInvalidQuantity),
		errors.Is(err, billing.ErrInvalidDiscount),
		errors.Is(err, billing.ErrDraftInvalid):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
