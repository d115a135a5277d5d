package utils

import (
	"github.com/ecyouth/portal/internal/middleware"
	"github.com/ecyouth/portal/internal/models"
)

// CanModerate is the single ownership/role gate used by every handler that
// mutates somebody's resource: admins may act on anything, everyone else only
// on what they own.
func CanModerate(user middleware.AuthenticatedUser, ownerID uint) bool {
	return user.Role == models.RoleAdmin || user.ID == ownerID
}
