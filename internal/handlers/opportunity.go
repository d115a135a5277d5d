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

type OpportunityRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory"`

	Organization string `json:"organization"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Website      string `json:"website"`
	ApplyURL     string `json:"apply_url"`

	AllowInternalApplication bool           `json:"allow_internal_application"`
	ApplicationQuestions     datatypes.JSON `json:"application_questions"`
	RequiredDocuments        datatypes.JSON `json:"required_documents"`

	Location     string         `json:"location"`
	Eligibility  string         `json:"eligibility"`
	Requirements datatypes.JSON `json:"requirements"`

	Deadline    *time.Time `json:"deadline"`
	ClosingDate *time.Time `json:"closing_date"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	Amount      string `json:"amount"`
	FundingType string `json:"funding_type"`

	EmploymentType string `json:"employment_type"`
	Salary         string `json:"salary"`
	Experience     string `json:"experience"`

	ImageURL string         `json:"image_url"`
	Tags     datatypes.JSON `json:"tags"`
}

// initialStatus is the creation rule of the moderation state machine: admin
// listings skip review, everything else waits for approval.
func initialStatus(role string) string {
	if role == models.RoleAdmin {
		return models.OpportunityApproved
	}
	return models.OpportunityPending
}

// publiclyVisible narrows a query to approved listings that have not passed
// their closing date. Expiry is a read-time filter, never a stored transition.
func publiclyVisible(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.Where("status = ?", models.OpportunityApproved).
		Where("closing_date IS NULL OR closing_date >= ?", now)
}

var opportunitySortColumns = map[string]string{
	"created_at":   "created_at",
	"closing_date": "closing_date",
	"views":        "views",
	"title":        "title",
}

func ListOpportunities(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 100)

	query := db.DB.Model(&models.Opportunity{})

	// A creator browsing their own listings sees every status; the public
	// feed only sees live approved listings.
	if createdBy := ctx.Query("created_by"); createdBy != "" {
		query = query.Where("created_by_id = ?", createdBy)
	} else {
		query = publiclyVisible(query, time.Now())
	}

	if category := ctx.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if subcategory := ctx.Query("subcategory"); subcategory != "" {
		query = query.Where("subcategory = ?", subcategory)
	}

	if location := ctx.Query("location"); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}

	if ctx.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"title ILIKE ? OR description ILIKE ? OR organization ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	sortBy := ctx.DefaultQuery("sort_by", "created_at")
	column, ok := opportunitySortColumns[sortBy]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if ctx.DefaultQuery("sort_order", "desc") == "asc" {
		direction = "ASC"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunities"})
		return
	}

	var opportunities []models.Opportunity
	if err := query.Order(column + " " + direction).
		Limit(limit).
		Offset(offset).
		Find(&opportunities).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve opportunities"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"opportunities": opportunities,
		"total":         total,
		"total_pages":   utils.TotalPages(total, limit),
		"current_page":  page,
	})
}

func GetOpportunity(ctx *gin.Context) {
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

	// At-least-once analytics counter; duplicates under concurrency are fine.
	if err := db.DB.Model(&opportunity).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		log.Printf("Failed to increment views for opportunity %d: %v", id, err)
	} else {
		opportunity.Views++
	}

	ctx.JSON(http.StatusOK, opportunity)
}

func CreateOpportunity(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req OpportunityRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title, description and category are required"})
		return
	}

	if !models.ValidCategory(req.Category) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	status := initialStatus(currentUser.Role)

	opportunity := opportunityFromRequest(req)
	opportunity.Status = status
	opportunity.CreatedByID = currentUser.ID

	if err := db.DB.Create(&opportunity).Error; err != nil {
		log.Printf("Failed to create opportunity: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create opportunity"})
		return
	}

	message := "Opportunity submitted for admin approval"
	if status == models.OpportunityApproved {
		message = "Opportunity created successfully"
	} else {
		BroadcastModerationEvent("opportunity_pending", opportunity.Title)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":     message,
		"opportunity": opportunity,
	})
}

func UpdateOpportunity(ctx *gin.Context) {
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

	var req OpportunityRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title, description and category are required"})
		return
	}

	if !models.ValidCategory(req.Category) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
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

	if !utils.CanModerate(currentUser, opportunity.CreatedByID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to edit this opportunity"})
		return
	}

	// createdBy never changes after creation; only updatedBy tracks editors.
	applyOpportunityRequest(&opportunity, req)
	opportunity.UpdatedByID = &currentUser.ID

	if err := db.DB.Save(&opportunity).Error; err != nil {
		log.Printf("Failed to update opportunity %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update opportunity"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Opportunity updated",
		"opportunity": opportunity,
	})
}

func DeleteOpportunity(ctx *gin.Context) {
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

	if !utils.CanModerate(currentUser, opportunity.CreatedByID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this opportunity"})
		return
	}

	if err := db.DB.Delete(&opportunity).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete opportunity"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Opportunity deleted successfully"})
}

func SaveOpportunity(ctx *gin.Context) {
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

	var opportunity models.Opportunity

	if err := db.DB.First(&opportunity, id).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Opportunity not found"})
		return
	}

	saved := models.SavedOpportunity{UserID: userID, OpportunityID: id}

	if err := db.DB.Create(&saved).Error; err != nil {
		// Saving twice is a no-op, not an error.
		if !isDuplicateKey(err) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save opportunity"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Opportunity saved"})
}

func UnsaveOpportunity(ctx *gin.Context) {
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

	if err := db.DB.Where("user_id = ? AND opportunity_id = ?", userID, id).
		Delete(&models.SavedOpportunity{}).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove saved opportunity"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Opportunity removed from saved"})
}

func opportunityFromRequest(req OpportunityRequest) models.Opportunity {
	var opportunity models.Opportunity
	applyOpportunityRequest(&opportunity, req)
	return opportunity
}

func applyOpportunityRequest(o *models.Opportunity, req OpportunityRequest) {
	o.Title = req.Title
	o.Description = req.Description
	o.Category = req.Category
	o.Subcategory = req.Subcategory
	o.Organization = req.Organization
	o.ContactEmail = req.ContactEmail
	o.ContactPhone = req.ContactPhone
	o.Website = req.Website
	o.ApplyURL = req.ApplyURL
	o.AllowInternalApplication = req.AllowInternalApplication
	o.ApplicationQuestions = req.ApplicationQuestions
	o.RequiredDocuments = req.RequiredDocuments
	o.Location = req.Location
	o.Eligibility = req.Eligibility
	o.Requirements = req.Requirements
	o.Deadline = req.Deadline
	o.ClosingDate = req.ClosingDate
	o.StartDate = req.StartDate
	o.EndDate = req.EndDate
	o.Amount = req.Amount
	o.FundingType = req.FundingType
	o.EmploymentType = req.EmploymentType
	o.Salary = req.Salary
	o.Experience = req.Experience
	o.ImageURL = req.ImageURL
	o.Tags = req.Tags
}
