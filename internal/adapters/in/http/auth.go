package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hako/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const actorKey = "actor"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the bearer token claims. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate issues a token for actor valid from now for the manager ttl.
func (m *TokenManager) Generate(actor kernel.Actor, now time.Time) (string, error) {
	claims := Claims{
		Role: actor.Role().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies tokenString and returns the actor it names.
func (m *TokenManager) Parse(tokenString string) (kernel.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return kernel.Actor{}, ErrExpiredToken
		}
		return kernel.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return kernel.Actor{}, ErrInvalidToken
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, ErrInvalidToken
	}
	role, err := kernel.ParseRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, ErrInvalidToken
	}
	actor, err := kernel.NewActor(userID, role)
	if err != nil {
		return kernel.Actor{}, ErrInvalidToken
	}
	return actor, nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// actor of a valid one in the echo context.
func Authenticate(tokens *TokenManager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return unauthorized(c, "missing authorization header")
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return unauthorized(c, "invalid authorization header format")
			}

			actor, err := tokens.Parse(parts[1])
			if err != nil {
				logger.Warn("bearer token rejected",
					zap.String("path", c.Request().URL.Path),
					zap.String("method", c.Request().Method),
					zap.Error(err),
				)
				return unauthorized(c, err.Error())
			}

			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, Error{Code: http.StatusUnauthorized, Message: message})
}

func actorFrom(c echo.Context) (kernel.Actor, bool) {
	actor, ok := c.Get(actorKey).(kernel.Actor)
	return actor, ok
}
