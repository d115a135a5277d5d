package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/auth"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/types"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`

	// Stakeholder company profile
	CompanyName        string `json:"company_name"`
	CompanyDescription string `json:"company_description"`
	CompanyIndustry    string `json:"company_industry"`
	CompanySize        string `json:"company_size"`
	CompanyWebsite     string `json:"company_website"`
	CompanyPhone       string `json:"company_phone"`
	CompanyLocation    string `json:"company_location"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpgradeToStakeholderRequest struct {
	CompanyName        string `json:"company_name" binding:"required"`
	CompanyDescription string `json:"company_description"`
	CompanyIndustry    string `json:"company_industry"`
	CompanySize        string `json:"company_size"`
	CompanyWebsite     string `json:"company_website"`
	Phone              string `json:"phone"`
	Location           string `json:"location"`
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Self-registration never grants admin.
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	if role != models.RoleUser && role != models.RoleStakeholder {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be user or stakeholder"})
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	if role == models.RoleStakeholder {
		newUser.CompanyName = req.CompanyName
		newUser.CompanyDescription = req.CompanyDescription
		newUser.CompanyIndustry = req.CompanyIndustry
		newUser.CompanySize = req.CompanySize
		newUser.CompanyWebsite = req.CompanyWebsite
		newUser.Phone = req.CompanyPhone
		newUser.Location = req.CompanyLocation
		newUser.VerificationStatus = models.VerificationPending
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
			return
		}
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email, newUser.Role)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(&newUser),
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := db.DB.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.IsSuspended {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":  "Account is suspended",
			"reason": user.SuspensionReason,
		})
		return
	}

	now := time.Now()
	db.DB.Model(&user).UpdateColumn("last_login", now)

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(&user)})
}

// UpgradeToStakeholder converts a plain user account into an unverified
// stakeholder with a company profile.
func UpgradeToStakeholder(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpgradeToStakeholderRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Company name is required"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Role == models.RoleAdmin {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Admin accounts cannot be converted"})
		return
	}

	updates := map[string]interface{}{
		"role":                models.RoleStakeholder,
		"company_name":        req.CompanyName,
		"company_description": req.CompanyDescription,
		"company_industry":    req.CompanyIndustry,
		"company_size":        req.CompanySize,
		"company_website":     req.CompanyWebsite,
		"verification_status": models.VerificationPending,
	}

	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to upgrade user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Account upgraded to stakeholder, pending verification",
		"user":    userResponse(&user),
	})
}

func userResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		CompanyName:        user.CompanyName,
		VerificationStatus: user.VerificationStatus,
	}
}
