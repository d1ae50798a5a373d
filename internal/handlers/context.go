package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teraturizm/transfer-admin/internal/middleware"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/services"
	"github.com/teraturizm/transfer-admin/internal/utils"
)

// actorFromContext collects the audit metadata of the current request
func actorFromContext(c *gin.Context) services.Actor {
	actor := services.Actor{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
		RequestID: middleware.GetRequestID(c),
	}

	if user, ok := middleware.GetUserContext(c); ok {
		userID := user.UserID
		actor.UserID = &userID
		actor.Email = user.Email
		actor.Role = models.UserRole(user.Role)
	}

	return actor
}
