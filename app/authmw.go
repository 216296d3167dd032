package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/models"
	"olilab/store"
)

// UserIDHeader carries the caller's user id, resolved by the external
// session layer in front of this service. The middleware only authorizes:
// the account must exist and be ACTIVE.
const UserIDHeader = "X-User-ID"

func AuthRequired(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader(UserIDHeader)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		var user models.User
		found := false
		err := st.View(c.Request.Context(), func(v store.View) error {
			user, found = v.User(uid)
			return nil
		})
		if err != nil || !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if user.Status != models.UserActive {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "account is not active"})
			return
		}
		c.Set("userID", user.ID)
		c.Set("fullName", user.FullName)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("isAdmin")
		if isAdmin, _ := v.(bool); !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
