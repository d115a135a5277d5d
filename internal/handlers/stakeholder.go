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
	"gorm.io/gorm"
)

type ReviewApplicationRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ListMyOpportunities returns every listing the stakeholder created, all
// statuses included, with application counts.
func ListMyOpportunities(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Model(&models.Opportunity{}).Where("created_by_id = ?", userID)

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var opportunities []models.Opportunity

	if err := query.Order("created_at DESC").Find(&opportunities).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunities"})
		return
	}

	ctx.JSON(http.StatusOK, opportunities)
}

// ListOpportunityApplications returns the applications against one of the
// stakeholder's listings. Admins may view any listing's applications.
func ListOpportunityApplications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	opportunityID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opportunity models.Opportunity

	if err := db.DB.First(&opportunity, opportunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunity"})
		}
		return
	}

	if !utils.CanModerate(currentUser, opportunity.CreatedByID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view these applications"})
		return
	}

	query := db.DB.Preload("User").Where("opportunity_id = ?", opportunityID)

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.Application

	if err := query.Order("created_at ASC").Find(&applications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	for i := range applications {
		applications[i].User.PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, applications)
}

// ReviewApplication sets the review status of an application on one of the
// stakeholder's listings. Withdrawn applications are out of reach.
func ReviewApplication(ctx *gin.Context) {
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

	var req ReviewApplicationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	if !models.ValidReviewStatus(req.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review status"})
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

	if !utils.CanModerate(currentUser, application.Opportunity.CreatedByID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to review this application"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         req.Status,
		"reviewed_by_id": currentUser.ID,
		"reviewed_at":    now,
	}

	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	// The applicant may withdraw while the review is in flight; the guard
	// keeps the withdrawal authoritative.
	result := db.DB.Model(&models.Application{}).
		Where("id = ? AND status <> ?", id, models.ApplicationWithdrawn).
		Updates(updates)

	if result.Error != nil {
		log.Printf("Failed to review application %d: %v", id, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Application has been withdrawn"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Application " + req.Status})
}

// GetStakeholderAnalytics summarizes the stakeholder's listings: totals,
// per-status counts and aggregate engagement.
func GetStakeholderAnalytics(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	type opportunityEngagement struct {
		ID           uint   `json:"id"`
		Title        string `json:"title"`
		Status       string `json:"status"`
		Views        int    `json:"views"`
		Applications int    `json:"applications"`
	}

	var analytics struct {
		TotalOpportunities int64                   `json:"total_opportunities"`
		Approved           int64                   `json:"approved"`
		Pending            int64                   `json:"pending"`
		Rejected           int64                   `json:"rejected"`
		TotalViews         int64                   `json:"total_views"`
		TotalApplications  int64                   `json:"total_applications"`
		RecentApplications int64                   `json:"recent_applications"`
		PendingReview      int64                   `json:"pending_review"`
		ByOpportunity      []opportunityEngagement `json:"by_opportunity"`
	}

	base := db.DB.Model(&models.Opportunity{}).Where("created_by_id = ?", userID)

	base.Session(&gorm.Session{}).Count(&analytics.TotalOpportunities)
	base.Session(&gorm.Session{}).Where("status = ?", models.OpportunityApproved).Count(&analytics.Approved)
	base.Session(&gorm.Session{}).Where("status = ?", models.OpportunityPending).Count(&analytics.Pending)
	base.Session(&gorm.Session{}).Where("status = ?", models.OpportunityRejected).Count(&analytics.Rejected)

	var totals struct {
		Views        int64
		Applications int64
	}
	db.DB.Model(&models.Opportunity{}).
		Select("COALESCE(SUM(views), 0) AS views, COALESCE(SUM(applications), 0) AS applications").
		Where("created_by_id = ?", userID).
		Scan(&totals)

	analytics.TotalViews = totals.Views
	analytics.TotalApplications = totals.Applications

	db.DB.Model(&models.Application{}).
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("opportunities.created_by_id = ? AND applications.status = ?", userID, models.ApplicationPending).
		Count(&analytics.PendingReview)

	db.DB.Model(&models.Application{}).
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("opportunities.created_by_id = ? AND applications.created_at >= ?",
			userID, time.Now().AddDate(0, 0, -7)).
		Count(&analytics.RecentApplications)

	db.DB.Model(&models.Opportunity{}).
		Select("id, title, status, views, applications").
		Where("created_by_id = ?", userID).
		Order("views DESC").
		Scan(&analytics.ByOpportunity)

	ctx.JSON(http.StatusOK, analytics)
}
