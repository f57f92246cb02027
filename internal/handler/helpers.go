package handler

import (
	"errors"
	"net/http"
	"reflect"

	"almacenpos/internal/apierror"
	"almacenpos/internal/middleware"
	"almacenpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
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

// usuarioIDDesdeClaims resolves the authenticated user's id from the JWT
// claims. A missing or malformed user_id claim aborts with 401: uuid.Nil must
// never reach the not-null usuario_id columns of the ledger.
func usuarioIDDesdeClaims(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(service.ErrNoAutenticado.Error()))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New(service.ErrNoAutenticado.Error()))
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps domain sentinels to HTTP status codes. Conflicts
// (insufficient stock, double resolution, double open) get 409 so clients can
// distinguish a retryable race from a malformed request.
func writeServiceError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrProductoNoEncontrado),
		errors.Is(err, service.ErrOrdenNoEncontrada),
		errors.Is(err, service.ErrAjusteNoEncontrado),
		errors.Is(err, service.ErrVentaNoEncontrada),
		errors.Is(err, service.ErrSesionNoEncontrada):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrStockInsuficiente),
		errors.Is(err, service.ErrYaResuelto),
		errors.Is(err, service.ErrCajaYaAbierta),
		errors.Is(err, service.ErrSinSesionAbierta),
		errors.Is(err, service.ErrCajaCerrada):
		status = http.StatusConflict
	}
	c.JSON(status, apierror.New(err.Error()))
}
