package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cerberus100/Telehealthcrm-sub000/internal/platform/auth"
)

// Recovery converts handler panics into a fixed 500 response so the
// decision service never drops a connection mid-request. The panic
// value and stack go to the log only: panic text can embed claim
// values, and error responses from this service stay opaque.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				claims, _ := auth.ClaimsFromContext(c.Request().Context())
				logger.Error().
					Str("request_id", requestID(c)).
					Str("org_id", claims.OrgID).
					Str("role", string(claims.Role)).
					Str("path", c.Request().URL.Path).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}()
			return next(c)
		}
	}
}
