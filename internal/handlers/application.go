package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationRequest struct {
	CoverLetter string         `json:"cover_letter"`
	Resume      string         `json:"resume"`
	Documents   datatypes.JSON `json:"documents"`
	Answers     datatypes.JSON `json:"answers"`
}

type CreateApplicationRequest struct {
	OpportunityID uint `json:"opportunity_id" binding:"required"`
	ApplicationRequest
}

// ApplyToOpportunity is the listing-scoped entry point: POST /opportunities/:id/apply.
func ApplyToOpportunity(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	opportunityID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ApplicationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	submitApplication(ctx, userID, opportunityID, req)
}

// CreateApplication is the collection entry point: POST /applications. Both
// routes share submitApplication, so the duplicate rule is identical.
func CreateApplication(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateApplicationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Opportunity ID is required"})
		return
	}

	submitApplication(ctx, userID, req.OpportunityID, req.ApplicationRequest)
}

func submitApplication(ctx *gin.Context, userID, opportunityID uint, req ApplicationRequest) {
	var opportunity models.Opportunity

	if err := db.DB.First(&opportunity, opportunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunity"})
		}
		return
	}

	if !opportunity.Visible(time.Now()) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Opportunity is not open for applications"})
		return
	}

	if !opportunity.AllowInternalApplication {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "This opportunity does not accept applications through the portal"})
		return
	}

	application := models.Application{
		UserID:        userID,
		OpportunityID: opportunityID,
		CoverLetter:   req.CoverLetter,
		Resume:        req.Resume,
		Documents:     req.Documents,
		Answers:       req.Answers,
		Status:        models.ApplicationPending,
	}

	// The partial unique index rejects a second live application; a withdrawn
	// one does not count, so reapplying after withdrawal goes through.
	if err := db.DB.Create(&application).Error; err != nil {
		if isDuplicateKey(err) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "You have already applied to this opportunity"})
			return
		}
		log.Printf("Failed to create application: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	if err := db.DB.Model(&opportunity).
		UpdateColumn("applications", gorm.Expr("applications + ?", 1)).Error; err != nil {
		log.Printf("Failed to increment application count for opportunity %d: %v", opportunityID, err)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": application,
	})
}

func ListMyApplications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Preload("Opportunity").Where("user_id = ?", userID)

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.Application

	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	ctx.JSON(http.StatusOK, applications)
}

func GetApplication(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var application models.Application

	if err := db.DB.Preload("Opportunity").First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}

	// Visible to the applicant, the listing owner and admins.
	if application.UserID != currentUser.ID &&
		!utils.CanModerate(currentUser, application.Opportunity.CreatedByID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this application"})
		return
	}

	ctx.JSON(http.StatusOK, application)
}

// UpdateApplication lets the applicant revise their materials while the
// application is still pending. Once review starts the content is frozen.
func UpdateApplication(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ApplicationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var application models.Application

	if err := db.DB.First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}

	if application.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to edit this application"})
		return
	}

	if application.Status != models.ApplicationPending {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Application can no longer be edited"})
		return
	}

	application.CoverLetter = req.CoverLetter
	application.Resume = req.Resume
	application.Documents = req.Documents
	application.Answers = req.Answers

	if err := db.DB.Save(&application).Error; err != nil {
		log.Printf("Failed to update application %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Application updated",
		"application": application,
	})
}

// WithdrawApplication moves an application to withdrawn from any state.
// Withdrawal is applicant-only and terminal.
func WithdrawApplication(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var application models.Application

	if err := db.DB.First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}

	if application.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to withdraw this application"})
		return
	}

	// Any state may be withdrawn, even after a decision; the withdrawal is
	// what frees the partial unique index for a fresh application.
	if err := db.DB.Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", models.ApplicationWithdrawn).Error; err != nil {
		log.Printf("Failed to withdraw application %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw application"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Application withdrawn"})
}
