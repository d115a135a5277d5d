package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/utils"
	"github.com/ecyouth/portal/internal/whatsapp"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionPatchRequest struct {
	Category    string                       `json:"category"`
	ReviewNotes string                       `json:"review_notes"`
	ParsedData  *models.SubmissionParsedData `json:"parsed_data"`
}

type RejectSubmissionRequest struct {
	Reason string `json:"reason"`
}

var errSubmissionAlreadyModerated = errors.New("submission already moderated")

// VerifyWhatsAppWebhook answers the Meta subscription handshake: echo the
// challenge when the verify token matches, otherwise refuse.
func VerifyWhatsAppWebhook(ctx *gin.Context) {
	mode := ctx.Query("hub.mode")
	token := ctx.Query("hub.verify_token")
	challenge := ctx.Query("hub.challenge")

	if mode == "subscribe" && token == os.Getenv("WHATSAPP_VERIFY_TOKEN") {
		ctx.String(http.StatusOK, challenge)
		return
	}

	ctx.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// ReceiveWhatsAppWebhook ingests message deliveries into the moderation queue.
// Meta retries on non-2xx, so every accepted delivery returns 200 even when
// individual messages are skipped.
func ReceiveWhatsAppWebhook(ctx *gin.Context) {
	body, err := ctx.GetRawData()

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := ctx.GetHeader("X-Hub-Signature-256")

	if !whatsapp.ValidSignature(body, signature, os.Getenv("WHATSAPP_APP_SECRET")) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var payload whatsapp.WebhookPayload

	if err := json.Unmarshal(body, &payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if payload.Object != "whatsapp_business_account" {
		ctx.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	allowList := os.Getenv("WHATSAPP_ALLOWED_SENDERS")
	stored := 0

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for _, msg := range change.Value.Messages {
				if !whatsapp.AllowedSender(msg.From, allowList) {
					log.Printf("Ignoring WhatsApp message from unlisted sender %s", msg.From)
					continue
				}

				if storeSubmission(change.Value.Metadata, msg, names[msg.From]) {
					stored++
				}

				// Best effort; a failed read receipt never blocks ingestion.
				if err := whatsapp.MarkMessageAsRead(ctx.Request.Context(),
					change.Value.Metadata.PhoneNumberID, msg.ID); err != nil {
					log.Printf("Failed to mark WhatsApp message %s as read: %v", msg.ID, err)
				}
			}
		}
	}

	if stored > 0 {
		BroadcastModerationEvent("whatsapp_submission", strconv.Itoa(stored)+" new submission(s)")
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "received"})
}

// storeSubmission persists one inbound message, relying on the unique message
// ID to make webhook retries idempotent.
func storeSubmission(meta whatsapp.Metadata, msg whatsapp.Message, senderName string) bool {
	content, mediaURL := whatsapp.ExtractContent(msg)

	timestamp := time.Now()
	if secs, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil {
		timestamp = time.Unix(secs, 0)
	}

	if senderName == "" {
		senderName = "Unknown"
	}

	metadata, _ := json.Marshal(models.SubmissionMetadata{
		PhoneNumberID:      meta.PhoneNumberID,
		DisplayPhoneNumber: meta.DisplayPhoneNumber,
	})

	submission := models.WhatsAppSubmission{
		MessageID:      msg.ID,
		SenderPhone:    msg.From,
		SenderName:     senderName,
		MessageType:    msg.Type,
		MessageContent: content,
		MediaURL:       mediaURL,
		Category:       whatsapp.CategorizeMessage(content),
		Status:         models.SubmissionPending,
		Timestamp:      timestamp,
		Metadata:       datatypes.JSON(metadata),
	}

	if err := db.DB.Create(&submission).Error; err != nil {
		if isDuplicateKey(err) {
			return false
		}
		log.Printf("Failed to store WhatsApp submission %s: %v", msg.ID, err)
		return false
	}

	return true
}

func ListSubmissions(ctx *gin.Context) {
	page, limit, offset := utils.ParsePagination(ctx, 20, 100)

	query := db.DB.Model(&models.WhatsAppSubmission{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if category := ctx.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submissions"})
		return
	}

	var submissions []models.WhatsAppSubmission

	if err := query.Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submissions"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"submissions":  submissions,
		"total":        total,
		"total_pages":  utils.TotalPages(total, limit),
		"current_page": page,
	})
}

func GetSubmission(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var submission models.WhatsAppSubmission

	if err := db.DB.Preload("Opportunity").Preload("ReviewedBy").First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission"})
		}
		return
	}

	if submission.ReviewedBy != nil {
		submission.ReviewedBy.PasswordHash = ""
	}

	ctx.JSON(http.StatusOK, submission)
}

// PatchSubmission lets an admin correct the parsed listing fields and category
// before approval.
func PatchSubmission(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req SubmissionPatchRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Category != "" {
		updates["category"] = req.Category
	}

	if req.ReviewNotes != "" {
		updates["review_notes"] = req.ReviewNotes
	}

	if req.ParsedData != nil {
		data, err := json.Marshal(req.ParsedData)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parsed data"})
			return
		}
		updates["parsed_data"] = datatypes.JSON(data)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	result := db.DB.Model(&models.WhatsAppSubmission{}).
		Where("id = ? AND status = ?", id, models.SubmissionPending).
		Updates(updates)

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Submission is no longer pending"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Submission updated"})
}

// ApproveSubmission claims a pending submission and publishes it as an
// approved listing in one transaction. The claim is a conditional UPDATE, so
// if two moderators race exactly one wins and the loser gets a conflict.
func ApproveSubmission(ctx *gin.Context) {
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

	var submission models.WhatsAppSubmission

	if err := db.DB.First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submission"})
		}
		return
	}

	var opportunity models.Opportunity

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		claim := tx.Model(&models.WhatsAppSubmission{}).
			Where("id = ? AND status = ?", id, models.SubmissionPending).
			Updates(map[string]interface{}{
				"status":         models.SubmissionApproved,
				"reviewed_by_id": currentUser.ID,
				"reviewed_at":    now,
			})

		if claim.Error != nil {
			return claim.Error
		}

		if claim.RowsAffected == 0 {
			return errSubmissionAlreadyModerated
		}

		opportunity = opportunityFromSubmission(&submission)
		opportunity.CreatedByID = currentUser.ID

		if err := tx.Create(&opportunity).Error; err != nil {
			return err
		}

		return tx.Model(&models.WhatsAppSubmission{}).
			Where("id = ?", id).
			UpdateColumn("opportunity_id", opportunity.ID).Error
	})

	if txErr != nil {
		if errors.Is(txErr, errSubmissionAlreadyModerated) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Submission has already been moderated"})
			return
		}
		log.Printf("Failed to approve submission %d: %v", id, txErr)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve submission"})
		return
	}

	BroadcastModerationEvent("submission_approved", opportunity.Title)

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Submission approved and published",
		"opportunity": opportunity,
	})
}

// opportunityFromSubmission builds the listing from the admin-curated parsed
// data, falling back to the raw message for anything missing.
func opportunityFromSubmission(s *models.WhatsAppSubmission) models.Opportunity {
	var parsed models.SubmissionParsedData
	if len(s.ParsedData) > 0 {
		_ = json.Unmarshal(s.ParsedData, &parsed)
	}

	title := parsed.Title
	if title == "" {
		title = "WhatsApp submission from " + s.SenderName
	}

	description := parsed.Description
	if description == "" {
		description = s.MessageContent
	}

	category := s.Category
	if !models.ValidCategory(category) {
		category = "career"
	}

	organization := parsed.Organization
	if organization == "" {
		organization = s.SenderName
	}

	location := parsed.Location
	if location == "" {
		location = "Eastern Cape"
	}

	opportunity := models.Opportunity{
		Title:        title,
		Description:  description,
		Category:     category,
		Organization: organization,
		Location:     location,
		ContactEmail: parsed.ContactEmail,
		ContactPhone: parsed.ContactPhone,
		Website:      parsed.Website,
		Amount:       parsed.Amount,
		ClosingDate:  parsed.Deadline,
		Deadline:     parsed.Deadline,
		Status:       models.OpportunityApproved,
	}

	if opportunity.ContactPhone == "" {
		opportunity.ContactPhone = s.SenderPhone
	}

	if len(parsed.Requirements) > 0 {
		if data, err := json.Marshal(parsed.Requirements); err == nil {
			opportunity.Requirements = datatypes.JSON(data)
		}
	}

	return opportunity
}

func RejectSubmission(ctx *gin.Context) {
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

	var req RejectSubmissionRequest
	_ = ctx.BindJSON(&req)

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.SubmissionRejected,
		"reviewed_by_id": currentUser.ID,
		"reviewed_at":    now,
	}

	if req.Reason != "" {
		updates["review_notes"] = req.Reason
	}

	result := db.DB.Model(&models.WhatsAppSubmission{}).
		Where("id = ? AND status = ?", id, models.SubmissionPending).
		Updates(updates)

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject submission"})
		return
	}

	if result.RowsAffected == 0 {
		var submission models.WhatsAppSubmission
		if err := db.DB.First(&submission, id).Error; err != nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		ctx.JSON(http.StatusConflict, gin.H{"error": "Submission has already been moderated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Submission rejected"})
}

func DeleteSubmission(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Delete(&models.WhatsAppSubmission{}, id)

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete submission"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Submission deleted"})
}

// GetSubmissionStats breaks the moderation queue down by status, plus the
// category spread of what is still waiting.
func GetSubmissionStats(ctx *gin.Context) {
	type bucket struct {
		Key   string `json:"key"`
		Count int64  `json:"count"`
	}

	var byStatus []bucket
	db.DB.Model(&models.WhatsAppSubmission{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus)

	var pendingByCategory []bucket
	db.DB.Model(&models.WhatsAppSubmission{}).
		Select("category AS key, COUNT(*) AS count").
		Where("status = ?", models.SubmissionPending).
		Group("category").
		Scan(&pendingByCategory)

	var total int64
	db.DB.Model(&models.WhatsAppSubmission{}).Count(&total)

	ctx.JSON(http.StatusOK, gin.H{
		"total":               total,
		"by_status":           byStatus,
		"pending_by_category": pendingByCategory,
	})
}
