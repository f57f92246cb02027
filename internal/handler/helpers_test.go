package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"almacenpos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsCtx(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, w
}

func TestUsuarioIDDesdeClaims_OK(t *testing.T) {
	c, _ := claimsCtx(t)
	quiero := uuid.New()
	c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: quiero.String()})

	id, ok := usuarioIDDesdeClaims(c)
	require.True(t, ok)
	assert.Equal(t, quiero, id)
}

// A token whose user_id claim does not parse must be rejected with 401, not
// degraded to uuid.Nil and written into usuario_id columns.
func TestUsuarioIDDesdeClaims_ClaimMalformado(t *testing.T) {
	c, w := claimsCtx(t)
	c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: "no-es-uuid"})

	id, ok := usuarioIDDesdeClaims(c)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsuarioIDDesdeClaims_SinClaims(t *testing.T) {
	c, w := claimsCtx(t)

	_, ok := usuarioIDDesdeClaims(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
