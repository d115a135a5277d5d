package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20 // 5 MB

var cvExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadDir resolves the upload directory, defaulting to ./uploads.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

// UploadCV stores the user's CV under a random filename and records it on the
// profile. The original filename is kept for display only.
func UploadCV(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	file, err := ctx.FormFile("cv")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "CV file is required"})
		return
	}

	if file.Size > maxUploadSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 5MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !cvExtensions[ext] {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and Word documents are accepted"})
		return
	}

	filename := uuid.New().String() + ext
	destination := filepath.Join(UploadDir(), "cv", filename)

	if err := ctx.SaveUploadedFile(file, destination); err != nil {
		log.Printf("Failed to save CV upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"cv_url":         "/uploads/cv/" + filename,
		"cv_file_name":   file.Filename,
		"cv_uploaded_at": now,
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		log.Printf("Failed to record CV for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "CV uploaded",
		"cv_url":  "/uploads/cv/" + filename,
	})
}

// UploadImage stores a listing image and returns its URL; the caller attaches
// it to an opportunity via the normal update flow.
func UploadImage(ctx *gin.Context) {
	if _, err := utils.GetCurrentUserID(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	file, err := ctx.FormFile("image")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	if file.Size > maxUploadSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 5MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and WebP images are accepted"})
		return
	}

	filename := uuid.New().String() + ext
	destination := filepath.Join(UploadDir(), "images", filename)

	if err := ctx.SaveUploadedFile(file, destination); err != nil {
		log.Printf("Failed to save image upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded",
		"url":     "/uploads/images/" + filename,
	})
}
