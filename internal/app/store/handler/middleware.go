package handler

import (
	"context"
	"net/http"
	"strings"

	"onlinestore/internal/app/store/entity"
	"onlinestore/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Ключи контекста Gin для данных аутентифицированного запроса
const (
	ctxSubjectID = "subject_id"
	ctxUsername  = "username"
	ctxScopes    = "scopes"
	ctxCustomer  = "customer"
)

// JWTClaims - claims токена внешнего identity provider
// Subject токена - это ID OIDC-пользователя
type JWTClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Scope             string `json:"scope"`
	jwt.RegisteredClaims
}

// AuthMiddleware проверяет bearer JWT в запросах
type AuthMiddleware struct {
	jwtSecret string
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate требует валидный bearer JWT и кладёт subject, имя и scopes
// в контекст Gin. Запросы без токена отклоняются без тела ответа
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if !m.authenticate(c, authHeader) {
			return
		}

		c.Next()
	}
}

// AuthenticateOptional пропускает запросы без заголовка Authorization
// как анонимные, но предъявленный токен всё равно должен быть валидным
func (m *AuthMiddleware) AuthenticateOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !m.authenticate(c, authHeader) {
			return
		}

		c.Next()
	}
}

// RequireScope требует наличия scope в токене
// Выполняется после Authenticate, до бизнес-логики
func (m *AuthMiddleware) RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopes, exists := c.Get(ctxScopes)
		if !exists {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		for _, granted := range scopes.([]string) {
			if granted == scope {
				c.Next()
				return
			}
		}

		c.AbortWithStatus(http.StatusForbidden)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, authHeader string) bool {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return false
	}

	token, err := jwt.ParseWithClaims(parts[1], &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(m.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatus(http.StatusUnauthorized)
		return false
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return false
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return false
	}

	c.Set(ctxSubjectID, subjectID)
	c.Set(ctxUsername, claims.PreferredUsername)
	c.Set(ctxScopes, strings.Fields(claims.Scope))
	return true
}

// CustomerServiceInterface - контракт синхронизатора покупателей
type CustomerServiceInterface interface {
	SyncCustomer(ctx context.Context, subjectID uuid.UUID, username string) (*entity.Customer, error)
}

// SyncMiddleware гарантирует наличие локального покупателя для каждого
// аутентифицированного запроса до того, как запрос дойдёт до handlers.
// Разрешённый покупатель кладётся в контекст Gin и дальше передаётся
// в сервисы явным аргументом
type SyncMiddleware struct {
	customerService CustomerServiceInterface
}

// NewSyncMiddleware создает новый middleware синхронизации покупателей
func NewSyncMiddleware(customerService CustomerServiceInterface) *SyncMiddleware {
	return &SyncMiddleware{customerService: customerService}
}

// Sync выполняет синхронизацию; для анонимных запросов - no-op
func (m *SyncMiddleware) Sync() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, exists := c.Get(ctxSubjectID)
		if !exists {
			c.Next()
			return
		}

		customer, err := m.customerService.SyncCustomer(
			c.Request.Context(), subject.(uuid.UUID), c.GetString(ctxUsername))
		if err != nil {
			logger.Error().Err(err).
				Str("subject_id", subject.(uuid.UUID).String()).
				Msg("Failed to synchronize customer")
			abortProblem(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(ctxCustomer, customer)
		c.Next()
	}
}

// currentCustomer достаёт покупателя, разрешённого middleware синхронизации
func currentCustomer(c *gin.Context) (*entity.Customer, bool) {
	value, exists := c.Get(ctxCustomer)
	if !exists {
		return nil, false
	}
	customer, ok := value.(*entity.Customer)
	return customer, ok
}
