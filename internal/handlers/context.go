package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/rifat29/ripple/backend/internal/models"
)

// getUserIDFromContext pulls the authenticated user id placed in the context
// by the JWT middleware; empty when unauthenticated
func getUserIDFromContext(c echo.Context) string {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return ""
	}
	return claims.UserID
}
