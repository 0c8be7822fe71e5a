package httpkit

import (
	"context"

	"salon_booking_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Actor returns the admin subject set by AdminRequired, or "public" for
// anonymous routes.
func Actor(c *gin.Context) string {
	if value, ok := c.Get(ContextActorKey); ok {
		if subject, ok := value.(string); ok && subject != "" {
			return subject
		}
	}
	return "public"
}

// RequestContext returns the request context enriched with the actor so
// service-level logs can be attributed.
func RequestContext(c *gin.Context) context.Context {
	return context.WithValue(c.Request.Context(), logger.ActorKey, Actor(c))
}
