package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/cerberus100/Telehealthcrm-sub000/internal/policy"
)

// PurposeHeader carries a just-in-time purpose-of-use supplied by the UI
// after a RequiresPurposeOfUse prompt. It supplements a token that was
// issued before the caller stated a purpose.
const PurposeHeader = "X-Purpose-Of-Use"

// forbiddenMessage is deliberately generic: denials must not reveal
// which rule fired to a probing client.
const forbiddenMessage = "forbidden"

// BindClaims returns middleware that lifts the verified token from the
// echo context (stored under "user" by the upstream JWT verifier) into
// the request context as policy claims. A request-scoped purpose-of-use
// header overrides an empty token purpose so the just-in-time prompt
// flow works without reissuing tokens.
//
// Requests without a verified token pass through with no claims bound;
// Enforce then denies them. 401 handling belongs to the verifier, not
// here.
func BindClaims() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok || token == nil {
				return next(c)
			}
			tc, ok := token.Claims.(*TokenClaims)
			if !ok {
				return next(c)
			}

			claims := tc.Policy()
			if claims.PurposeOfUse == "" {
				claims.PurposeOfUse = strings.TrimSpace(c.Request().Header.Get(PurposeHeader))
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithClaims(req.Context(), claims)))
			return next(c)
		}
	}
}

// Enforce returns middleware that gates a route on the access matrix.
// The decision is recomputed on every request; break-glass expiry makes
// a cached grant a security defect.
func Enforce(resource policy.Resource, action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := ClaimsFromContext(c.Request().Context())
			if !policy.CanAccess(resource, action, claims) {
				return echo.NewHTTPError(http.StatusForbidden, forbiddenMessage)
			}
			return next(c)
		}
	}
}
