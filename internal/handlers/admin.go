package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/moderation"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RejectOpportunityRequest struct {
	Reason string `json:"reason"`
}

type AdminOpportunityPatchRequest struct {
	Status   *string `json:"status"`
	Featured *bool   `json:"featured"`
	Urgent   *bool   `json:"urgent"`
}

type UpdateUserRequest struct {
	Role               *string `json:"role"`
	VerificationStatus *string `json:"verification_status"`
	IsActive           *bool   `json:"is_active"`
}

type SuspendUserRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ReportStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution"`
}

// GetAdminStats aggregates the dashboard counters: totals, pending moderation
// work and the by-role/by-category breakdowns.
func GetAdminStats(ctx *gin.Context) {
	type bucket struct {
		Key   string `json:"key"`
		Count int64  `json:"count"`
	}

	var stats struct {
		TotalUsers           int64    `json:"total_users"`
		UsersByRole          []bucket `json:"users_by_role"`
		TotalOpportunities   int64    `json:"total_opportunities"`
		PendingOpportunities int64    `json:"pending_opportunities"`
		ByCategory           []bucket `json:"opportunities_by_category"`
		ByStatus             []bucket `json:"opportunities_by_status"`
		TotalApplications    int64    `json:"total_applications"`
		RecentApplications   int64    `json:"recent_applications"`
		PendingSubmissions   int64    `json:"pending_submissions"`
		PendingReports       int64    `json:"pending_reports"`
		ForumPosts           int64    `json:"forum_posts"`
	}

	db.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	db.DB.Model(&models.User{}).
		Select("role AS key, COUNT(*) AS count").
		Group("role").
		Scan(&stats.UsersByRole)

	db.DB.Model(&models.Opportunity{}).Count(&stats.TotalOpportunities)
	db.DB.Model(&models.Opportunity{}).Where("status = ?", models.OpportunityPending).Count(&stats.PendingOpportunities)
	db.DB.Model(&models.Opportunity{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&stats.ByCategory)
	db.DB.Model(&models.Opportunity{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&stats.ByStatus)

	db.DB.Model(&models.Application{}).Count(&stats.TotalApplications)
	db.DB.Model(&models.Application{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).
		Count(&stats.RecentApplications)

	db.DB.Model(&models.WhatsAppSubmission{}).Where("status = ?", models.SubmissionPending).Count(&stats.PendingSubmissions)
	db.DB.Model(&models.Report{}).Where("status = ?", models.ReportPending).Count(&stats.PendingReports)
	db.DB.Model(&models.ForumPost{}).Count(&stats.ForumPosts)

	ctx.JSON(http.StatusOK, stats)
}

func ListUsers(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 100)

	query := db.DB.Model(&models.User{})

	if role := ctx.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if status := ctx.Query("verification_status"); status != "" {
		query = query.Where("verification_status = ?", status)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	var users []models.User

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users":        users,
		"total":        total,
		"total_pages":  utils.TotalPages(total, limit),
		"current_page": page,
	})
}

func GetUser(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.PasswordHash = ""

	ctx.JSON(http.StatusOK, user)
}

// UpdateUser changes role, verification status or active flag. Stakeholder
// verification approval flows through here.
func UpdateUser(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		updates["role"] = *req.Role
	}

	if req.VerificationStatus != nil {
		if !models.ValidVerificationStatus(*req.VerificationStatus) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification status"})
			return
		}
		updates["verification_status"] = *req.VerificationStatus
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	user.PasswordHash = ""

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"user":    user,
	})
}

func SuspendUser(ctx *gin.Context) {
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

	if id == currentUser.ID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "You cannot suspend your own account"})
		return
	}

	var req SuspendUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Suspension reason is required"})
		return
	}

	result := db.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_suspended":      true,
		"suspension_reason": req.Reason,
	})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suspend user"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User suspended"})
}

func UnsuspendUser(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_suspended":      false,
		"suspension_reason": "",
	})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsuspend user"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User unsuspended"})
}

// DeleteUser removes an account. Other admin accounts are protected; an admin
// may still delete themselves through the self-service endpoint.
func DeleteUser(ctx *gin.Context) {
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

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Role == models.RoleAdmin && user.ID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete another admin account"})
		return
	}

	if err := db.DB.Delete(&user).Error; err != nil {
		log.Printf("Failed to delete user %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func ListPendingOpportunities(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 100)

	query := db.DB.Model(&models.Opportunity{}).Where("status = ?", models.OpportunityPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunities"})
		return
	}

	var opportunities []models.Opportunity

	if err := query.Preload("CreatedBy").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&opportunities).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunities"})
		return
	}

	for i := range opportunities {
		opportunities[i].CreatedBy.PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, gin.H{
		"opportunities": opportunities,
		"total":         total,
		"total_pages":   utils.TotalPages(total, limit),
		"current_page":  page,
	})
}

// ApproveOpportunity transitions pending or rejected -> approved, so a
// mistaken rejection can be corrected. The guard is in the WHERE clause so
// two concurrent moderators cannot both succeed.
func ApproveOpportunity(ctx *gin.Context) {
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

	var opportunity models.Opportunity

	if err := db.DB.First(&opportunity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunity"})
		}
		return
	}

	result := db.DB.Model(&models.Opportunity{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.OpportunityPending, models.OpportunityRejected}).
		Updates(map[string]interface{}{
			"status":           models.OpportunityApproved,
			"rejection_reason": "",
			"updated_by_id":    currentUser.ID,
		})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve opportunity"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Opportunity is already approved"})
		return
	}

	BroadcastModerationEvent("opportunity_approved", opportunity.Title)

	ctx.JSON(http.StatusOK, gin.H{"message": "Opportunity approved"})
}

// RejectOpportunity transitions pending or approved -> rejected, covering
// both normal moderation and pulling a live listing after the fact.
func RejectOpportunity(ctx *gin.Context) {
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

	var req RejectOpportunityRequest
	// Body is optional; a missing reason gets the default.
	_ = ctx.BindJSON(&req)

	reason := req.Reason
	if reason == "" {
		reason = models.DefaultRejectionReason
	}

	var opportunity models.Opportunity

	if err := db.DB.First(&opportunity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunity"})
		}
		return
	}

	result := db.DB.Model(&models.Opportunity{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.OpportunityPending, models.OpportunityApproved}).
		Updates(map[string]interface{}{
			"status":           models.OpportunityRejected,
			"rejection_reason": reason,
			"updated_by_id":    currentUser.ID,
		})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject opportunity"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Opportunity is already rejected"})
		return
	}

	BroadcastModerationEvent("opportunity_rejected", opportunity.Title)

	ctx.JSON(http.StatusOK, gin.H{"message": "Opportunity rejected"})
}

// PatchOpportunity is the admin override: force a status, toggle featured or
// urgent, outside the normal moderation flow.
func PatchOpportunity(ctx *gin.Context) {
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

	var req AdminOpportunityPatchRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Status != nil {
		if !models.ValidOpportunityStatus(*req.Status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		updates["status"] = *req.Status
	}

	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if req.Urgent != nil {
		updates["urgent"] = *req.Urgent
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	updates["updated_by_id"] = currentUser.ID

	result := db.DB.Model(&models.Opportunity{}).Where("id = ?", id).Updates(updates)

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update opportunity"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Opportunity updated"})
}

// CheckOpportunityFraud runs the configured risk assessor against a listing
// and returns the assessment without persisting anything.
func CheckOpportunityFraud(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opportunity models.Opportunity

	if err := db.DB.First(&opportunity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunity"})
		}
		return
	}

	requirements := ""
	if len(opportunity.Requirements) > 0 {
		requirements = string(opportunity.Requirements)
	}

	assessment, err := riskAssessor.Assess(ctx.Request.Context(), moderation.Listing{
		Title:        opportunity.Title,
		Description:  opportunity.Description,
		Requirements: requirements,
		Organization: opportunity.Organization,
		ContactEmail: opportunity.ContactEmail,
		ContactPhone: opportunity.ContactPhone,
		ApplyURL:     opportunity.ApplyURL,
	})

	if err != nil {
		log.Printf("Fraud assessment failed for opportunity %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Fraud assessment failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"opportunity_id": id,
		"assessment":     assessment,
		"checked_at":     time.Now().Format(time.RFC3339),
	})
}

func ListAllApplications(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 100)

	query := db.DB.Model(&models.Application{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if opportunityID := ctx.Query("opportunity_id"); opportunityID != "" {
		query = query.Where("opportunity_id = ?", opportunityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	var applications []models.Application

	if err := query.Preload("User").Preload("Opportunity").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&applications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	for i := range applications {
		applications[i].User.PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        total,
		"total_pages":  utils.TotalPages(total, limit),
		"current_page": page,
	})
}

func ListReports(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 100)

	query := db.DB.Model(&models.Report{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if reportType := ctx.Query("report_type"); reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}

	var reports []models.Report

	if err := query.Preload("ReportedBy").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}

	for i := range reports {
		reports[i].ReportedBy.PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, gin.H{
		"reports":      reports,
		"total":        total,
		"total_pages":  utils.TotalPages(total, limit),
		"current_page": page,
	})
}

// UpdateReportStatus moves a report through its lifecycle and records who
// resolved it.
func UpdateReportStatus(ctx *gin.Context) {
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

	var req ReportStatusRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	if !models.ValidReportStatus(req.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report status"})
		return
	}

	var report models.Report

	if err := db.DB.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		}
		return
	}

	updates := map[string]interface{}{
		"status":     req.Status,
		"resolution": req.Resolution,
	}

	if req.Status == models.ReportResolved || req.Status == models.ReportDismissed {
		now := time.Now()
		updates["resolved_by_id"] = currentUser.ID
		updates["resolved_at"] = now
	}

	if err := db.DB.Model(&report).Updates(updates).Error; err != nil {
		log.Printf("Failed to update report %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Report updated"})
}
