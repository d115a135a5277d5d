package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateReportRequest struct {
	ReportType   string `json:"report_type" binding:"required"`
	ReportedItem uint   `json:"reported_item" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
	Description  string `json:"description" binding:"required"`
}

// CreateReport files a community report against an item. Validation of the
// reported item is deliberately loose: the item may be deleted before the
// report is reviewed.
func CreateReport(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateReportRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Report type, item, reason and description are required"})
		return
	}

	if !models.ValidReportType(req.ReportType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report type"})
		return
	}

	if !models.ValidReportReason(req.Reason) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report reason"})
		return
	}

	report := models.Report{
		ReportedByID: userID,
		ReportType:   req.ReportType,
		ReportedItem: req.ReportedItem,
		Reason:       req.Reason,
		Description:  req.Description,
		Status:       models.ReportPending,
	}

	if err := db.DB.Create(&report).Error; err != nil {
		log.Printf("Failed to create report: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit report"})
		return
	}

	BroadcastModerationEvent("report_filed", req.ReportType)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Report submitted, our team will review it",
		"report":  report,
	})
}

// ListMyReports returns the reports the authenticated user has filed.
func ListMyReports(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var reports []models.Report

	if err := db.DB.Where("reported_by_id = ?", userID).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}

	ctx.JSON(http.StatusOK, reports)
}

// GetReport returns a single report to its reporter or an admin.
func GetReport(ctx *gin.Context) {
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

	var report models.Report

	if err := db.DB.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		}
		return
	}

	if !utils.CanModerate(currentUser, report.ReportedByID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this report"})
		return
	}

	ctx.JSON(http.StatusOK, report)
}
