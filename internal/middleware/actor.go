package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floodyboy/sync-party/internal/auth"
	"github.com/floodyboy/sync-party/internal/logger"
	"github.com/floodyboy/sync-party/internal/models"
)

const actorKey = "actor"

// RequireActor resolves the request actor through the given resolver
// and aborts with 401 when none can be produced. The transport behind
// the resolver is opaque here.
func RequireActor(resolver auth.ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := resolver.Resolve(c.Request)
		if err != nil {
			logger.Log.Info().
				Str("path", c.Request.URL.Path).
				Msg("Unauthenticated request to protected route")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"msg":     "notAuthenticated",
			})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the resolved actor is an admin.
// It must run after RequireActor.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"msg":     "notAuthorized",
			})
			return
		}
		c.Next()
	}
}

// GetActor returns the actor resolved for the request
func GetActor(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}
