package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AccountStatus only lets through callers whose token carries one of the
// allowed account statuses. It must run after Auth.
func AccountStatus(allowedStatuses ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedStatuses))
	for _, s := range allowedStatuses {
		allowed[s] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			status, _ := c.Get(ContextAccountStatus).(string)
			if _, ok := allowed[status]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "account is not active"})
			}
			return next(c)
		}
	}
}
