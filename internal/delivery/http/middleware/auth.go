package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

// Context keys set by Auth.
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

var errInvalidToken = errors.New("invalid or expired token")

// Claims is the bearer token payload. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// accessTokenParam carries the token for websocket upgrades, where browsers
// cannot set headers.
const accessTokenParam = "access_token"

// Auth validates an HS256 bearer token and stores the caller in the context.
// issuer is checked only when non-empty.
func Auth(secret []byte, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && websocketUpgrade(c) {
			raw = c.Query(accessTokenParam)
			ok = raw != ""
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := ParseToken(raw, secret, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		role := claims.Role
		if role == "" {
			role = domain.RoleStudent
		}
		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, role)
		c.Next()
	}
}

// ParseToken verifies raw and returns its claims.
func ParseToken(raw string, secret []byte, issuer string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errInvalidToken
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, errInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// CallerFrom returns the identity stored by Auth.
func CallerFrom(c *gin.Context) domain.Caller {
	return domain.Caller{
		UserID: c.GetString(UserIDKey),
		Role:   c.GetString(UserRoleKey),
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func websocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
