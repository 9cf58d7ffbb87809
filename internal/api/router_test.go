package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/bengalbreeze/backend/internal/auth"
	"github.com/bengalbreeze/backend/internal/database/testutil"
)

func newTestRouter(t *testing.T) (*gin.Engine, *iauth.TokenService) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	tokens, err := iauth.NewTokenService(iauth.TokenConfig{Secret: "router-secret"})
	require.NoError(t, err)

	router, err := NewRouter(db, tokens)
	require.NoError(t, err)
	return router, tokens
}

func TestRouterRequiresDependencies(t *testing.T) {
	tokens, err := iauth.NewTokenService(iauth.TokenConfig{Secret: "router-secret"})
	require.NoError(t, err)

	_, err = NewRouter(nil, tokens)
	require.Error(t, err)

	db := testutil.MustOpenTestDB(t)
	_, err = NewRouter(db, nil)
	require.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, res.Code)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))

	require.Equal(t, http.StatusNotFound, res.Code)
	require.Contains(t, res.Body.String(), `"success":false`)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/agent-properties"},
		{http.MethodPost, "/add/properties"},
		{http.MethodPatch, "/verify/property/abc"},
		{http.MethodGet, "/wishlist"},
	} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(route.method, route.path, nil))
		require.Equal(t, http.StatusUnauthorized, res.Code, "%s %s", route.method, route.path)
	}
}

func TestPublicBrowsingNeedsNoToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/properties/verified", "/properties/advertised"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, res.Code, path)
	}
}
