package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

// AdminAuth only lets through requests carrying a valid admin bearer token.
func AdminAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		if !strings.HasPrefix(token, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid token format"))
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(strings.TrimPrefix(token, "Bearer "))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		if claims.Role != models.RoleAdmin {
			utils.RespondError(c, http.StatusForbidden, errors.New("Admin role required"))
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}
