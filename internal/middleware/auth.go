package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/auth"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthenticatedUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ErrAccountDeactivated and ErrAccountSuspended gate every authenticated
// route; suspended accounts additionally carry a reason.
var (
	ErrAccountDeactivated = errors.New("Account is deactivated")
	ErrAccountSuspended   = errors.New("Account is suspended")
)

// AccountAccessError reports why an authenticated user may not proceed, or nil.
func AccountAccessError(user *models.User) error {
	if !user.IsActive {
		return ErrAccountDeactivated
	}

	if user.IsSuspended {
		return ErrAccountSuspended
	}

	return nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		token, err := auth.VerifyJWT(parts[1])

		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token claims"})
			return
		}

		userID := uint(userIDFloat)

		var user models.User

		if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if err := AccountAccessError(&user); err != nil {
			if errors.Is(err, ErrAccountSuspended) {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":  err.Error(),
					"reason": user.SuspensionReason,
				})
				return
			}

			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		ctx.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(models.RoleAdmin)
}

// RequireStakeholder admits stakeholders and admins, mirroring the moderation
// rule that admins can do anything a stakeholder can.
func RequireStakeholder() gin.HandlerFunc {
	return requireRole(models.RoleStakeholder, models.RoleAdmin)
}

func requireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user type in context"})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
