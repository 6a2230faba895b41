package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/helpers"
)

// currentUser pulls the authenticated claims set by the auth middleware.
// Aborts with 401/500 on failure; callers just return when ok is false.
func currentUser(c *gin.Context) (*helpers.EnhancedClaims, uuid.UUID, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, uuid.Nil, false
	}

	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user claims"})
		return nil, uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID in token"})
		return nil, uuid.Nil, false
	}

	return claims, userID, true
}

func accessToken(c *gin.Context) string {
	if token, exists := c.Get("access_token"); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	token, _ := c.Cookie("access_token")
	return token
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return uuid.Nil, false
	}
	return id, true
}
