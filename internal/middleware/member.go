package middleware

import (
	"net/http" // HTTP status codes

	"library_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ActiveMemberMiddleware loads the authenticated user on each request and
// rejects suspended accounts. The loaded user is stored in the context for
// handlers that need profile or role information.
func ActiveMemberMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Suspended members keep their account but lose access
		if user.Status != domain.UserActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
			return
		}
		c.Set("currentUser", user) // Store full user for handlers
		c.Next()                   // Proceed to the next handler
	}
}
