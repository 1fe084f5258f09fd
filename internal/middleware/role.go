package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/database"
	apierrors "github.com/oso-hr/timetracking-api/internal/errors"
	"github.com/oso-hr/timetracking-api/internal/models"
)

const contextKeyProfile = "profile"

// RequireRole checks that the authenticated user holds one of the given
// roles. The role comes from the profile row, never from client input.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var student models.Student
		if err := database.GetDB().First(&student, userID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		allowed := false
		for _, role := range roles {
			if student.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			apierrors.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Set(contextKeyProfile, student)
		c.Next()
	}
}

// GetProfile retrieves the profile loaded by RequireRole.
func GetProfile(c *gin.Context) (models.Student, bool) {
	value, exists := c.Get(contextKeyProfile)
	if !exists {
		return models.Student{}, false
	}
	student, ok := value.(models.Student)
	return student, ok
}
