package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"onlinestore/internal/app/store/entity"
)

const testSecret = "test-secret"

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) SyncCustomer(ctx context.Context, subjectID uuid.UUID, username string) (*entity.Customer, error) {
	args := m.Called(ctx, subjectID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func signToken(t *testing.T, subject, username, scope string) string {
	claims := JWTClaims{
		PreferredUsername: username,
		Scope:             scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// ===================== Authenticate Tests =====================

func TestAuthenticate_NoHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).Authenticate())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).Authenticate())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InvalidSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware("other-secret").Authenticate())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signToken(t, uuid.NewString(), "alice", "")

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Subject токена должен быть UUID OIDC-пользователя
func TestAuthenticate_NonUUIDSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).Authenticate())
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signToken(t, "not-a-uuid", "alice", "")

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subjectID := uuid.New()

	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).Authenticate())
	router.GET("/protected", func(c *gin.Context) {
		assert.Equal(t, subjectID, c.MustGet(ctxSubjectID))
		assert.Equal(t, "alice", c.GetString(ctxUsername))
		assert.Equal(t, []string{"edit_products", "create_reviews"}, c.MustGet(ctxScopes))
		c.Status(http.StatusOK)
	})

	token := signToken(t, subjectID.String(), "alice", "edit_products create_reviews")

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ===================== AuthenticateOptional Tests =====================

func TestAuthenticateOptional_Anonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).AuthenticateOptional())
	router.GET("/public", func(c *gin.Context) {
		_, exists := c.Get(ctxSubjectID)
		assert.False(t, exists)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/public", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// Предъявленный токен проходит валидацию даже на публичных маршрутах
func TestAuthenticateOptional_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).AuthenticateOptional())
	router.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateOptional_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subjectID := uuid.New()

	router := gin.New()
	router.Use(NewAuthMiddleware(testSecret).AuthenticateOptional())
	router.GET("/public", func(c *gin.Context) {
		assert.Equal(t, subjectID, c.MustGet(ctxSubjectID))
		c.Status(http.StatusOK)
	})

	token := signToken(t, subjectID.String(), "alice", "")

	req, _ := http.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ===================== RequireScope Tests =====================

func TestRequireScope_Granted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(testSecret)

	router := gin.New()
	router.Use(m.Authenticate(), m.RequireScope(ScopeEditProducts))
	router.POST("/products", func(c *gin.Context) { c.Status(http.StatusCreated) })

	token := signToken(t, uuid.NewString(), "alice", "edit_products")

	req, _ := http.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

// Аутентифицированный запрос без нужного scope получает 403 без тела
func TestRequireScope_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(testSecret)

	router := gin.New()
	router.Use(m.Authenticate(), m.RequireScope(ScopeEditProducts))
	router.POST("/products", func(c *gin.Context) { c.Status(http.StatusCreated) })

	token := signToken(t, uuid.NewString(), "alice", "create_reviews")

	req, _ := http.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

// ===================== Sync Tests =====================

func TestSync_Anonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	customerService := new(MockCustomerService)

	router := gin.New()
	router.Use(NewSyncMiddleware(customerService).Sync())
	router.GET("/products", func(c *gin.Context) {
		_, ok := currentCustomer(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	customerService.AssertNotCalled(t, "SyncCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_Authenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subjectID := uuid.New()
	customer := &entity.Customer{ID: uuid.New(), Username: "alice"}

	customerService := new(MockCustomerService)
	customerService.On("SyncCustomer", mock.Anything, subjectID, "alice").Return(customer, nil)

	m := NewAuthMiddleware(testSecret)
	router := gin.New()
	router.Use(m.Authenticate(), NewSyncMiddleware(customerService).Sync())
	router.GET("/products", func(c *gin.Context) {
		resolved, ok := currentCustomer(c)
		assert.True(t, ok)
		assert.Equal(t, customer, resolved)
		c.Status(http.StatusOK)
	})

	token := signToken(t, subjectID.String(), "alice", "")

	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	customerService.AssertExpectations(t)
}

// Сбой синхронизации не пускает запрос дальше
func TestSync_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subjectID := uuid.New()

	customerService := new(MockCustomerService)
	customerService.On("SyncCustomer", mock.Anything, subjectID, "alice").
		Return(nil, errors.New("integrity fault"))

	m := NewAuthMiddleware(testSecret)
	router := gin.New()
	router.Use(m.Authenticate(), NewSyncMiddleware(customerService).Sync())
	router.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signToken(t, subjectID.String(), "alice", "")

	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var problem entity.ProblemDetail
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusInternalServerError, problem.Status)
}
