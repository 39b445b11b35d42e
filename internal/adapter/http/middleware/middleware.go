package middleware

import (
	"crypto/hmac"
	"net/http"
	"time"

	"trading-wallet/pkg/apperror"
	"trading-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// HeaderInternalKey authenticates service-to-service calls.
	HeaderInternalKey = "X-Internal-Key"

	// Context keys
	CtxUserID      = "user_id"
	CtxBearerToken = "bearer_token"
	CtxRequestID   = "request_id"
)

// UserID extracts the authenticated user ID set by JWTAuth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// BearerToken returns the raw Authorization header value set by JWTAuth,
// used when forwarding requests downstream on the caller's behalf.
func BearerToken(c *gin.Context) string {
	return c.GetString(CtxBearerToken)
}

// JWTAuth creates a middleware that validates bearer tokens and stores
// the authenticated user ID in the request context. Tokens are HMAC
// signed; the user ID travels in the subject claim.
func JWTAuth(secret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		tokenStr := authHeader[7:]
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			log.Warn().Str("sub", sub).Msg("token subject is not a user id")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxBearerToken, authHeader)
		c.Next()
	}
}

// InternalAuth creates a middleware that authenticates
// service-to-service calls via a shared internal key.
func InternalAuth(internalKey string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderInternalKey)
		if provided == "" || internalKey == "" ||
			!hmac.Equal([]byte(provided), []byte(internalKey)) {
			log.Warn().Str("path", c.Request.URL.Path).Str("client_ip", c.ClientIP()).
				Msg("internal key rejected")
			response.Error(c, apperror.ErrInvalidInternalKey())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestID assigns each request an ID, echoed in the response envelope
// and the X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(CtxRequestID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
