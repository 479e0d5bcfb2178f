package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"content-pipeline/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// Claims - пользовательские клеймы JWT.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// UserAuth определяет текущего пользователя.
// Если secretKey пуст, все запросы выполняются от имени defaultUserID.
// Иначе требуется Bearer-токен HS256 с клеймом user_id.
func UserAuth(secretKey string, defaultUserID int64, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			c.Set(userIDKey, defaultUserID)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		})
		if err != nil {
			log.Debug("JWT validation failed", zap.Error(err))
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				abortUnauthorized(c, "Token has expired")
			case errors.Is(err, jwt.ErrTokenMalformed):
				abortUnauthorized(c, "Token is malformed")
			default:
				abortUnauthorized(c, "Token is invalid")
			}
			return
		}
		if !token.Valid || claims.UserID <= 0 {
			abortUnauthorized(c, "Invalid token: user_id missing")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// UserID возвращает идентификатор пользователя, установленный UserAuth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// IssueToken подписывает токен для пользователя.
func IssueToken(userID int64, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Code:    models.ErrCodeUnauthorized,
		Message: message,
	})
}
