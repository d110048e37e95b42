package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user's ID from the context, zero
// when the request is anonymous.
func UserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// Role returns the authenticated user's role, empty when anonymous.
func Role(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}
