package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/bengalbreeze/backend/internal/auth"
	"github.com/bengalbreeze/backend/internal/database/testutil"
	"github.com/bengalbreeze/backend/internal/middleware"
	"github.com/bengalbreeze/backend/internal/models"
	"github.com/bengalbreeze/backend/internal/services"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *iauth.TokenService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	tokens, err := iauth.NewTokenService(iauth.TokenConfig{Secret: "handler-secret"})
	require.NoError(t, err)

	resolver, err := iauth.NewRoleResolver(db)
	require.NoError(t, err)

	guards, err := middleware.NewGuards(tokens, resolver)
	require.NoError(t, err)

	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)
	propertySvc, err := services.NewPropertyService(db)
	require.NoError(t, err)
	reviewSvc, err := services.NewReviewService(db)
	require.NoError(t, err)
	wishlistSvc, err := services.NewWishlistService(db)
	require.NoError(t, err)

	authHandler, err := NewAuthHandler(tokens)
	require.NoError(t, err)
	userHandler, err := NewUserHandler(userSvc)
	require.NoError(t, err)
	propertyHandler, err := NewPropertyHandler(propertySvc)
	require.NoError(t, err)
	reviewHandler, err := NewReviewHandler(reviewSvc, resolver)
	require.NoError(t, err)
	wishlistHandler, err := NewWishlistHandler(wishlistSvc)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/jwt", authHandler.IssueToken)
	router.POST("/users", userHandler.Register)
	router.GET("/users", guards.Role(models.RoleAdmin), userHandler.List)
	router.GET("/users/admin/:email", guards.Self("email"), userHandler.CheckAdmin)
	router.GET("/users/agent/:email", guards.Self("email"), userHandler.CheckAgent)
	router.PATCH("/users/admin/:id", guards.Role(models.RoleAdmin), userHandler.PromoteToAdmin)
	router.PATCH("/users/agent/:id", guards.Role(models.RoleAdmin), userHandler.PromoteToAgent)
	router.DELETE("/users/:id", guards.Role(models.RoleAdmin), userHandler.Delete)
	router.POST("/add/properties", guards.Role(models.RoleAgent), propertyHandler.Submit)
	router.GET("/agent-properties", guards.Role(models.RoleAgent), propertyHandler.ListMine)
	router.GET("/properties/verified", propertyHandler.ListVerified)
	router.GET("/properties/advertised", propertyHandler.ListAdvertised)
	router.PATCH("/verify/property/:id", guards.Role(models.RoleAdmin), propertyHandler.Verify)
	router.PATCH("/reject/property/:id", guards.Role(models.RoleAdmin), propertyHandler.Reject)
	router.PATCH("/add-advertise/property/:id", guards.Role(models.RoleAdmin), propertyHandler.Advertise)
	router.PATCH("/remove-advertise/property/:id", guards.Role(models.RoleAdmin), propertyHandler.Unadvertise)
	router.POST("/reviews", guards.Authenticated(), reviewHandler.Create)
	router.GET("/reviews/property/:id", reviewHandler.ListByProperty)
	router.DELETE("/reviews/:id", guards.Authenticated(), reviewHandler.Delete)
	router.POST("/wishlist", guards.Authenticated(), wishlistHandler.Add)
	router.GET("/wishlist", guards.Authenticated(), wishlistHandler.List)
	router.DELETE("/wishlist/:id", guards.Authenticated(), wishlistHandler.Remove)

	return handlerTestEnv{db: db, router: router, tokens: tokens}
}

func (env handlerTestEnv) register(t *testing.T, name, email string, role models.Role) string {
	t.Helper()

	res := env.do(t, http.MethodPost, "/users", "", gin.H{"name": name, "email": email})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, res.Code)

	if role != models.RoleNone {
		require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", email).Update("role", role).Error)
	}

	token, err := env.tokens.Issue(iauth.TokenInput{Email: email, Name: name})
	require.NoError(t, err)
	return token
}

func (env handlerTestEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res := httptest.NewRecorder()
	env.router.ServeHTTP(res, req)
	return res
}

func decodeData(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestIssueTokenAndAuthenticate(t *testing.T) {
	env := setupHandlerTestEnv(t)

	res := env.do(t, http.MethodPost, "/jwt", "", gin.H{"email": "buyer@example.com", "name": "Buyer"})
	require.Equal(t, http.StatusOK, res.Code)

	token, ok := decodeData(t, res)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	claims, err := env.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", claims.Email)
}

func TestIssueTokenRejectsBadPayload(t *testing.T) {
	env := setupHandlerTestEnv(t)

	res := env.do(t, http.MethodPost, "/jwt", "", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRegisterIsIdempotent(t *testing.T) {
	env := setupHandlerTestEnv(t)

	first := env.do(t, http.MethodPost, "/users", "", gin.H{"name": "Sam", "email": "sam@example.com"})
	require.Equal(t, http.StatusCreated, first.Code)

	again := env.do(t, http.MethodPost, "/users", "", gin.H{"name": "Sam Again", "email": "sam@example.com"})
	require.Equal(t, http.StatusOK, again.Code)
	require.Equal(t, "Sam", decodeData(t, again)["name"])
}

func TestRoleCheckIsSelfScoped(t *testing.T) {
	env := setupHandlerTestEnv(t)
	buyerToken := env.register(t, "Buyer", "buyer@example.com", models.RoleNone)

	res := env.do(t, http.MethodGet, "/users/admin/buyer@example.com", buyerToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, false, decodeData(t, res)["admin"])

	other := env.do(t, http.MethodGet, "/users/admin/"+testutil.TestAdminEmail, buyerToken, nil)
	require.Equal(t, http.StatusForbidden, other.Code)
}

func TestAdminCheckReflectsRole(t *testing.T) {
	env := setupHandlerTestEnv(t)
	adminToken := env.register(t, "Root", testutil.TestAdminEmail, models.RoleNone)

	res := env.do(t, http.MethodGet, "/users/admin/"+testutil.TestAdminEmail, adminToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, true, decodeData(t, res)["admin"])
}

func TestUserListRequiresAdmin(t *testing.T) {
	env := setupHandlerTestEnv(t)
	buyerToken := env.register(t, "Buyer", "buyer@example.com", models.RoleNone)
	adminToken := env.register(t, "Root", testutil.TestAdminEmail, models.RoleNone)

	require.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/users", "", nil).Code)
	require.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/users", buyerToken, nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/users", adminToken, nil).Code)
}

func TestPromoteTakesEffectWithoutReissuing(t *testing.T) {
	env := setupHandlerTestEnv(t)
	adminToken := env.register(t, "Root", testutil.TestAdminEmail, models.RoleNone)
	userToken := env.register(t, "Pat", "pat@example.com", models.RoleNone)

	require.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/agent-properties", userToken, nil).Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "pat@example.com").First(&user).Error)

	res := env.do(t, http.MethodPatch, "/users/agent/"+user.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.Code)

	// Same token, new role: the guard resolves the role live.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/agent-properties", userToken, nil).Code)
}

func TestPromoteUnknownUserIsNotFound(t *testing.T) {
	env := setupHandlerTestEnv(t)
	adminToken := env.register(t, "Root", testutil.TestAdminEmail, models.RoleNone)

	res := env.do(t, http.MethodPatch, "/users/admin/6f1d1f80-9f63-4e9c-8f54-000000000000", adminToken, nil)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestSubmitPropertyUsesCallerIdentity(t *testing.T) {
	env := setupHandlerTestEnv(t)
	agentToken := env.register(t, "Agent A", "agent@example.com", models.RoleAgent)

	res := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title":     "Lakeside Villa",
		"location":  "Sylhet",
		"price_min": 100000,
		"price_max": 150000,
		"images":    []string{"https://img.example.com/1.jpg"},
	})
	require.Equal(t, http.StatusCreated, res.Code)

	data := decodeData(t, res)
	require.Equal(t, "agent@example.com", data["agent_email"])
	require.Equal(t, string(models.VerificationPending), data["verification_status"])
	require.Equal(t, false, data["is_advertised"])
}

func TestSubmitPropertyRejectsInvertedPriceRange(t *testing.T) {
	env := setupHandlerTestEnv(t)
	agentToken := env.register(t, "Agent", "agent@example.com", models.RoleAgent)

	res := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title":     "Backwards Range",
		"location":  "Dhaka",
		"price_min": 500,
		"price_max": 100,
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "price_max must not be less than")
}

func TestSubmitPropertyRejectsNonHTTPImageRef(t *testing.T) {
	env := setupHandlerTestEnv(t)
	agentToken := env.register(t, "Agent", "agent@example.com", models.RoleAgent)

	res := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title":     "Bad Image",
		"location":  "Dhaka",
		"price_min": 1,
		"price_max": 2,
		"images":    []string{"ftp://img.example.com/1.jpg"},
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "http or https URL")
}

func TestAgentPropertiesAreOwnListingsOnly(t *testing.T) {
	env := setupHandlerTestEnv(t)
	tokenA := env.register(t, "Agent A", "a@example.com", models.RoleAgent)
	tokenB := env.register(t, "Agent B", "b@example.com", models.RoleAgent)

	res := env.do(t, http.MethodPost, "/add/properties", tokenA, gin.H{
		"title": "A's Flat", "location": "Dhaka", "price_min": 1, "price_max": 2,
	})
	require.Equal(t, http.StatusCreated, res.Code)

	var listed []models.Property
	resB := env.do(t, http.MethodGet, "/agent-properties", tokenB, nil)
	require.Equal(t, http.StatusOK, resB.Code)
	var envelope struct {
		Data []models.Property `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resB.Body.Bytes(), &envelope))
	listed = envelope.Data
	require.Empty(t, listed)
}

func TestLifecycleEndpoints(t *testing.T) {
	env := setupHandlerTestEnv(t)
	adminToken := env.register(t, "Root", testutil.TestAdminEmail, models.RoleNone)
	agentToken := env.register(t, "Agent", "agent@example.com", models.RoleAgent)

	created := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title": "Plot 7", "location": "Khulna", "price_min": 10, "price_max": 20,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	id, _ := decodeData(t, created)["id"].(string)
	require.NotEmpty(t, id)

	// Advertising an unverified listing is a state conflict.
	res := env.do(t, http.MethodPatch, "/add-advertise/property/"+id, adminToken, nil)
	require.Equal(t, http.StatusConflict, res.Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/verify/property/"+id, adminToken, nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/add-advertise/property/"+id, adminToken, nil).Code)

	advertised := env.do(t, http.MethodGet, "/properties/advertised", "", nil)
	require.Equal(t, http.StatusOK, advertised.Code)
	require.Contains(t, advertised.Body.String(), "Plot 7")

	// Rejection pulls the advertisement with it.
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/reject/property/"+id, adminToken, nil).Code)
	afterReject := env.do(t, http.MethodGet, "/properties/advertised", "", nil)
	require.NotContains(t, afterReject.Body.String(), "Plot 7")
}

func TestLifecycleUnknownPropertyIsNotFound(t *testing.T) {
	env := setupHandlerTestEnv(t)
	adminToken := env.register(t, "Root", testutil.TestAdminEmail, models.RoleNone)

	for _, path := range []string{"verify", "reject", "add-advertise", "remove-advertise"} {
		res := env.do(t, http.MethodPatch, fmt.Sprintf("/%s/property/6f1d1f80-9f63-4e9c-8f54-000000000000", path), adminToken, nil)
		require.Equal(t, http.StatusNotFound, res.Code, path)
	}
}

func TestLifecycleRequiresAdmin(t *testing.T) {
	env := setupHandlerTestEnv(t)
	agentToken := env.register(t, "Agent", "agent@example.com", models.RoleAgent)

	created := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title": "Plot 9", "location": "Bogura", "price_min": 10, "price_max": 20,
	})
	id, _ := decodeData(t, created)["id"].(string)

	res := env.do(t, http.MethodPatch, "/verify/property/"+id, agentToken, nil)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestReviewFlow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	agentToken := env.register(t, "Agent", "agent@example.com", models.RoleAgent)
	buyerToken := env.register(t, "Buyer", "buyer@example.com", models.RoleNone)

	created := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title": "Plot 3", "location": "Rajshahi", "price_min": 10, "price_max": 20,
	})
	propertyID, _ := decodeData(t, created)["id"].(string)

	res := env.do(t, http.MethodPost, "/reviews", buyerToken, gin.H{
		"property_id": propertyID,
		"rating":      5,
		"comment":     "Great view",
	})
	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "buyer@example.com", decodeData(t, res)["reviewer_email"])

	list := env.do(t, http.MethodGet, "/reviews/property/"+propertyID, "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	require.Contains(t, list.Body.String(), "Great view")
}

func TestWishlistFlow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	agentToken := env.register(t, "Agent", "agent@example.com", models.RoleAgent)
	buyerToken := env.register(t, "Buyer", "buyer@example.com", models.RoleNone)

	created := env.do(t, http.MethodPost, "/add/properties", agentToken, gin.H{
		"title": "Plot 5", "location": "Barishal", "price_min": 10, "price_max": 20,
	})
	propertyID, _ := decodeData(t, created)["id"].(string)

	added := env.do(t, http.MethodPost, "/wishlist", buyerToken, gin.H{"property_id": propertyID})
	require.Equal(t, http.StatusCreated, added.Code)
	entryID, _ := decodeData(t, added)["id"].(string)
	require.NotEmpty(t, entryID)

	list := env.do(t, http.MethodGet, "/wishlist", buyerToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	require.Contains(t, list.Body.String(), propertyID)

	removed := env.do(t, http.MethodDelete, "/wishlist/"+entryID, buyerToken, nil)
	require.Equal(t, http.StatusOK, removed.Code)
}
