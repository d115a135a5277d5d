package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name             string          `json:"name"`
	Bio              *string         `json:"bio"`
	Location         *string         `json:"location"`
	Phone            *string         `json:"phone"`
	EducationLevel   *string         `json:"education_level"`
	EmploymentStatus *string         `json:"employment_status"`
	Skills           *datatypes.JSON `json:"skills"`
	Interests        *datatypes.JSON `json:"interests"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// GetProfile returns the full profile of the authenticated user.
func GetProfile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.Preload("SavedOpportunities.Opportunity").First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.PasswordHash = ""

	ctx.JSON(http.StatusOK, user)
}

// UpdateProfile mutates only the self-service allow-list of profile fields.
func UpdateProfile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateProfileRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.EducationLevel != nil {
		updates["education_level"] = *req.EducationLevel
	}
	if req.EmploymentStatus != nil {
		updates["employment_status"] = *req.EmploymentStatus
	}
	if req.Skills != nil {
		updates["skills"] = *req.Skills
	}
	if req.Interests != nil {
		updates["interests"] = *req.Interests
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update profile for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user.PasswordHash = ""

	ctx.JSON(http.StatusOK, user)
}

// UpdatePreferences replaces the notification preferences blob wholesale.
func UpdatePreferences(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var prefs datatypes.JSON

	if err := ctx.BindJSON(&prefs); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("preferences", prefs).Error; err != nil {
		log.Printf("Failed to update preferences for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Preferences updated"})
}

func ChangePassword(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ChangePasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Both current and new password are required"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash new password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&user).UpdateColumn("password_hash", string(passwordHash)).Error; err != nil {
		log.Printf("Failed to update password for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// DeleteAccount removes the authenticated user after a password check.
func DeleteAccount(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password is required for account deletion"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password"})
		return
	}

	if err := db.DB.Delete(&user).Error; err != nil {
		log.Printf("Failed to delete user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// ListSavedOpportunities returns the user's bookmarked listings.
func ListSavedOpportunities(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var saved []models.SavedOpportunity

	if err := db.DB.Preload("Opportunity").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve saved opportunities"})
		return
	}

	opportunities := make([]models.Opportunity, 0, len(saved))
	for _, s := range saved {
		opportunities = append(opportunities, s.Opportunity)
	}

	ctx.JSON(http.StatusOK, opportunities)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
