package server

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// BasicAuthMiddleware guards the admin routes with HTTP basic auth.
// Credentials come from config; comparison is constant-time so timing
// doesn't leak how much of the password matched.
func BasicAuthMiddleware(username, password string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Refuse everything rather than run an open admin panel when
			// no password is configured.
			if password == "" {
				return unauthorized(c, "autenticación de administrador no configurada")
			}

			user, pass, ok := parseBasicAuth(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c, "credenciales de administrador requeridas")
			}

			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username))
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password))
			if userMatch&passMatch != 1 {
				return unauthorized(c, "Credenciales de administrador incorrectas")
			}

			return next(c)
		}
	}
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}
	user, pass, ok = strings.Cut(string(decoded), ":")
	return user, pass, ok
}

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set("WWW-Authenticate", `Basic realm="admin"`)
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "authentication_error",
			"message": message,
		},
	})
}
