package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

const testSecret = "middleware-test-secret"

func signedToken(t *testing.T, sub uint64, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func runRequest(auth string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	_ = h(c)
	return rec
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec := runRequest("", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	rec := runRequest("Bearer not.a.jwt", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	claims := jwt.MapClaims{"sub": uint64(1), "role": model.RoleCustomer, "exp": time.Now().Add(time.Hour).Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec := runRequest("Bearer "+raw, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_ValidTokenInjectsIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 42, model.RoleCustomer))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID, gotRole interface{}
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		gotID = c.Get("user_id")
		gotRole = c.Get("role")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), gotID) // numeric JWT claims decode as float64
	assert.Equal(t, model.RoleCustomer, gotRole)
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	rec := runRequest("Bearer "+signedToken(t, 7, model.RoleOwner),
		JWTAuth(testSecret), RequireRole(model.RoleOwner))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	rec := runRequest("Bearer "+signedToken(t, 7, model.RoleCustomer),
		JWTAuth(testSecret), RequireRole(model.RoleOwner))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_RejectsMissingRole(t *testing.T) {
	rec := runRequest("", RequireRole(model.RoleOwner))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "guest", requestUserID(c))

	c.Set("user_id", float64(42))
	assert.Equal(t, "42", requestUserID(c))

	c.Set("user_id", "7")
	assert.Equal(t, "7", requestUserID(c))
}
