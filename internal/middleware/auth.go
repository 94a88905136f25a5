package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingAuthHeader = errors.New("authorization header required")
	errMalformedAuth     = errors.New("authorization header format must be Bearer {token}")
	errMissingSubject    = errors.New("token has no subject")
)

// AuthMiddleware accepts HS256 bearer tokens issued upstream. The token subject is the wallet user ID;
// it is stored on the request context and attached to the request logger.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return []byte(jwtSecret), nil }

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx).With(
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()))

		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn("Request rejected", slog.String("reason", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErrorMessage(err)})
			return
		}

		userID, err := subjectOf(parser, raw, keyFunc)
		if err != nil {
			logger.Warn("Request rejected", slog.String("reason", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErrorMessage(err)})
			return
		}

		ctx = WithUserID(ctx, userID)
		ctx = WithLogger(ctx, GetLoggerFromCtx(ctx).With(slog.String("user_id", userID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", errMalformedAuth
	}
	return token, nil
}

func subjectOf(parser *jwt.Parser, raw string, keyFunc jwt.Keyfunc) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}

// authErrorMessage is what the client sees; it never echoes token contents.
func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingAuthHeader):
		return "Authorization header required"
	case errors.Is(err, errMalformedAuth):
		return "Authorization header format must be Bearer {token}"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "Token not valid yet"
	case errors.Is(err, errMissingSubject):
		return "Invalid token claims"
	default:
		return "Invalid token"
	}
}
