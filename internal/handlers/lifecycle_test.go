package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ecyouth/portal/db"
	"github.com/ecyouth/portal/internal/middleware"
	"github.com/ecyouth/portal/internal/models"
	"github.com/ecyouth/portal/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// These tests exercise the storage-backed invariants (partial unique index,
// conditional status updates) and need a real Postgres. Set TEST_DATABASE_URL
// to run them; they are skipped otherwise.
func openTestDB(t *testing.T) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gin.SetMode(gin.TestMode)

	if err := db.ConnectDatabase(dsn); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// FK order: children before parents
	for _, model := range []interface{}{
		&models.ForumComment{},
		&models.ForumPost{},
		&models.Application{},
		&models.SavedOpportunity{},
		&models.WhatsAppSubmission{},
		&models.Report{},
		&models.Opportunity{},
		&models.User{},
	} {
		if err := db.DB.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			t.Fatalf("clean %T: %v", model, err)
		}
	}
}

func createTestUser(t *testing.T, role string) models.User {
	t.Helper()

	user := models.User{
		Name:         role + " account",
		Email:        fmt.Sprintf("%s-%d@test.local", role, nextTestID()),
		PasswordHash: "irrelevant",
		Role:         role,
		IsActive:     true,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	return user
}

var testIDCounter int

func nextTestID() int {
	testIDCounter++
	return testIDCounter
}

func asAuthenticated(user models.User) *middleware.AuthenticatedUser {
	return &middleware.AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func invoke(t *testing.T, handler gin.HandlerFunc, body interface{}, user *middleware.AuthenticatedUser, id uint) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx.Request = httptest.NewRequest(http.MethodPost, "/", reader)
	ctx.Request.Header.Set("Content-Type", "application/json")

	if id != 0 {
		ctx.Params = gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
	}

	if user != nil {
		ctx.Set(types.ContextUserKey, *user)
	}

	handler(ctx)
	return w
}

func TestApplicationLifecycle(t *testing.T) {
	openTestDB(t)

	admin := createTestUser(t, models.RoleAdmin)
	applicant := createTestUser(t, models.RoleUser)

	opportunity := models.Opportunity{
		Title:                    "Retail Learnership",
		Description:              "Twelve month retail learnership with a monthly stipend.",
		Category:                 "learnership",
		Status:                   models.OpportunityApproved,
		AllowInternalApplication: true,
		CreatedByID:              admin.ID,
	}
	if err := db.DB.Create(&opportunity).Error; err != nil {
		t.Fatalf("create opportunity: %v", err)
	}

	body := ApplicationRequest{CoverLetter: "I would like to apply."}

	if w := invoke(t, ApplyToOpportunity, body, asAuthenticated(applicant), opportunity.ID); w.Code != http.StatusCreated {
		t.Fatalf("first application: status %d, body %s", w.Code, w.Body.String())
	}

	// The partial unique index rejects a second live application
	if w := invoke(t, ApplyToOpportunity, body, asAuthenticated(applicant), opportunity.ID); w.Code != http.StatusConflict {
		t.Fatalf("duplicate application: status %d, want 409", w.Code)
	}

	var application models.Application
	if err := db.DB.Where("user_id = ?", applicant.ID).First(&application).Error; err != nil {
		t.Fatalf("load application: %v", err)
	}

	// Once a decision lands the content is frozen
	db.DB.Model(&application).UpdateColumn("status", models.ApplicationApproved)

	if w := invoke(t, UpdateApplication, body, asAuthenticated(applicant), application.ID); w.Code != http.StatusConflict {
		t.Fatalf("edit after decision: status %d, want 409", w.Code)
	}

	// Withdrawal succeeds from any state, decided ones included
	if w := invoke(t, WithdrawApplication, nil, asAuthenticated(applicant), application.ID); w.Code != http.StatusOK {
		t.Fatalf("withdraw decided application: status %d, body %s", w.Code, w.Body.String())
	}

	if err := db.DB.First(&application, application.ID).Error; err != nil {
		t.Fatalf("reload application: %v", err)
	}
	if application.Status != models.ApplicationWithdrawn {
		t.Fatalf("status after withdraw = %s", application.Status)
	}

	// A withdrawn application no longer occupies the index slot
	if w := invoke(t, ApplyToOpportunity, body, asAuthenticated(applicant), opportunity.ID); w.Code != http.StatusCreated {
		t.Fatalf("reapply after withdrawal: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestOpportunityModerationTransitions(t *testing.T) {
	openTestDB(t)

	admin := createTestUser(t, models.RoleAdmin)
	stakeholder := createTestUser(t, models.RoleStakeholder)

	opportunity := models.Opportunity{
		Title:       "Community Garden Grant",
		Description: "Seed funding for community food gardens across the province.",
		Category:    "business",
		Status:      models.OpportunityPending,
		CreatedByID: stakeholder.ID,
	}
	if err := db.DB.Create(&opportunity).Error; err != nil {
		t.Fatalf("create opportunity: %v", err)
	}

	reload := func() models.Opportunity {
		var o models.Opportunity
		if err := db.DB.First(&o, opportunity.ID).Error; err != nil {
			t.Fatalf("reload opportunity: %v", err)
		}
		return o
	}

	if w := invoke(t, RejectOpportunity, gin.H{"reason": "Unverifiable organization"}, asAuthenticated(admin), opportunity.ID); w.Code != http.StatusOK {
		t.Fatalf("reject pending: status %d, body %s", w.Code, w.Body.String())
	}

	rejected := reload()
	if rejected.Status != models.OpportunityRejected || rejected.RejectionReason != "Unverifiable organization" {
		t.Fatalf("after reject: status %s, reason %q", rejected.Status, rejected.RejectionReason)
	}
	if rejected.UpdatedByID == nil || *rejected.UpdatedByID != admin.ID {
		t.Fatalf("reject did not stamp the moderator, got %v", rejected.UpdatedByID)
	}

	// A mistaken rejection can be corrected
	if w := invoke(t, ApproveOpportunity, nil, asAuthenticated(admin), opportunity.ID); w.Code != http.StatusOK {
		t.Fatalf("approve rejected: status %d, body %s", w.Code, w.Body.String())
	}

	approved := reload()
	if approved.Status != models.OpportunityApproved || approved.RejectionReason != "" {
		t.Fatalf("after approve: status %s, reason %q", approved.Status, approved.RejectionReason)
	}

	if w := invoke(t, ApproveOpportunity, nil, asAuthenticated(admin), opportunity.ID); w.Code != http.StatusConflict {
		t.Fatalf("approve approved: status %d, want 409", w.Code)
	}

	// A live listing can be pulled
	if w := invoke(t, RejectOpportunity, nil, asAuthenticated(admin), opportunity.ID); w.Code != http.StatusOK {
		t.Fatalf("reject approved: status %d, body %s", w.Code, w.Body.String())
	}

	pulled := reload()
	if pulled.Status != models.OpportunityRejected || pulled.RejectionReason != models.DefaultRejectionReason {
		t.Fatalf("after pull: status %s, reason %q", pulled.Status, pulled.RejectionReason)
	}

	if w := invoke(t, RejectOpportunity, nil, asAuthenticated(admin), opportunity.ID); w.Code != http.StatusConflict {
		t.Fatalf("reject rejected: status %d, want 409", w.Code)
	}
}

func TestSubmissionApprovalPublishesOnce(t *testing.T) {
	openTestDB(t)

	admin := createTestUser(t, models.RoleAdmin)

	submission := models.WhatsAppSubmission{
		MessageID:      "wamid.test-1",
		SenderPhone:    "27821234567",
		SenderName:     "Thandi",
		MessageType:    "text",
		MessageContent: "Bursary applications now open at WSU",
		Category:       "bursary",
		Status:         models.SubmissionPending,
		Timestamp:      time.Now(),
		ParsedData:     datatypes.JSON(`{"title":"WSU Bursary 2026"}`),
	}
	if err := db.DB.Create(&submission).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}

	if w := invoke(t, ApproveSubmission, nil, asAuthenticated(admin), submission.ID); w.Code != http.StatusOK {
		t.Fatalf("approve: status %d, body %s", w.Code, w.Body.String())
	}

	if err := db.DB.First(&submission, submission.ID).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if submission.Status != models.SubmissionApproved {
		t.Fatalf("terminal status = %s, want approved", submission.Status)
	}
	if submission.OpportunityID == nil {
		t.Fatal("approval did not link the published opportunity")
	}
	if submission.ReviewedByID == nil || *submission.ReviewedByID != admin.ID {
		t.Fatalf("approval did not stamp the reviewer, got %v", submission.ReviewedByID)
	}

	var opportunity models.Opportunity
	if err := db.DB.First(&opportunity, *submission.OpportunityID).Error; err != nil {
		t.Fatalf("load published opportunity: %v", err)
	}
	if opportunity.Status != models.OpportunityApproved || opportunity.Title != "WSU Bursary 2026" {
		t.Fatalf("published listing: status %s, title %q", opportunity.Status, opportunity.Title)
	}

	// The second moderator loses the race and no second listing appears
	if w := invoke(t, ApproveSubmission, nil, asAuthenticated(admin), submission.ID); w.Code != http.StatusConflict {
		t.Fatalf("second approve: status %d, want 409", w.Code)
	}

	var count int64
	db.DB.Model(&models.Opportunity{}).Count(&count)
	if count != 1 {
		t.Fatalf("opportunity count = %d, want exactly one", count)
	}
}
