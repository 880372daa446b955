package handler

import (
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// identityFromContext rebuilds the caller's Identity from the values the
// auth middleware stored. ok is false when any part is missing or malformed.
func identityFromContext(c *gin.Context) (service.Identity, bool) {
	rawUserID, exists := c.Get(middleware.CtxUserID)
	if !exists {
		return service.Identity{}, false
	}
	userIDStr, ok := rawUserID.(string)
	if !ok {
		return service.Identity{}, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return service.Identity{}, false
	}

	rawRole, exists := c.Get(middleware.CtxRole)
	if !exists {
		return service.Identity{}, false
	}
	role, ok := rawRole.(model.Role)
	if !ok {
		return service.Identity{}, false
	}

	rawOrgID, exists := c.Get(middleware.CtxOrgID)
	if !exists {
		return service.Identity{}, false
	}
	orgIDStr, ok := rawOrgID.(string)
	if !ok {
		return service.Identity{}, false
	}
	orgID, err := uuid.Parse(orgIDStr)
	if err != nil {
		return service.Identity{}, false
	}

	return service.Identity{UserID: userID, Role: role, OrganizationID: orgID}, true
}
