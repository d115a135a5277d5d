package router

import (
	"time"

	"github.com/ecyouth/portal/internal/handlers"
	"github.com/ecyouth/portal/internal/middleware"
	"github.com/ecyouth/portal/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", handlers.UploadDir())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register",
				middleware.RateLimit("auth", 10, time.Minute), handlers.Register)
			auth.POST("/login",
				middleware.RateLimit("auth", 10, time.Minute), handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.POST("/upgrade-to-stakeholder", middleware.AuthMiddleware(), handlers.UpgradeToStakeholder)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("/me", handlers.GetProfile)
			users.PUT("/me", handlers.UpdateProfile)
			users.PUT("/me/preferences", handlers.UpdatePreferences)
			users.PUT("/me/password", handlers.ChangePassword)
			users.DELETE("/me", handlers.DeleteAccount)
			users.GET("/me/saved", handlers.ListSavedOpportunities)
			users.POST("/me/cv", handlers.UploadCV)
		}

		opportunities := api.Group("/opportunities")
		{
			opportunities.GET("", handlers.ListOpportunities)
			opportunities.GET("/:id", handlers.GetOpportunity)

			authed := opportunities.Group("", middleware.AuthMiddleware())
			{
				authed.POST("", handlers.CreateOpportunity)
				authed.PUT("/:id", handlers.UpdateOpportunity)
				authed.DELETE("/:id", handlers.DeleteOpportunity)
				authed.POST("/:id/save", handlers.SaveOpportunity)
				authed.DELETE("/:id/save", handlers.UnsaveOpportunity)
				authed.POST("/:id/apply", handlers.ApplyToOpportunity)
				authed.GET("/:id/applications", handlers.ListOpportunityApplications)
			}
		}

		applications := api.Group("/applications", middleware.AuthMiddleware())
		{
			applications.GET("", handlers.ListMyApplications)
			applications.POST("", handlers.CreateApplication)
			applications.GET("/:id", handlers.GetApplication)
			applications.PUT("/:id", handlers.UpdateApplication)
			applications.POST("/:id/withdraw", handlers.WithdrawApplication)
			applications.PUT("/:id/review", handlers.ReviewApplication)
		}

		uploads := api.Group("/uploads", middleware.AuthMiddleware())
		{
			uploads.POST("/images", handlers.UploadImage)
		}

		forum := api.Group("/forum")
		{
			forum.GET("/posts", handlers.ListForumPosts)
			forum.GET("/posts/:id", handlers.GetForumPost)

			authed := forum.Group("", middleware.AuthMiddleware())
			{
				authed.POST("/posts", handlers.CreateForumPost)
				authed.PUT("/posts/:id", handlers.UpdateForumPost)
				authed.DELETE("/posts/:id", handlers.DeleteForumPost)
				authed.POST("/posts/:id/like", handlers.LikeForumPost)
				authed.POST("/posts/:id/comments", handlers.CreateForumComment)
				authed.DELETE("/comments/:id", handlers.DeleteForumComment)
				authed.POST("/comments/:id/like", handlers.LikeForumComment)
			}
		}

		reports := api.Group("/reports", middleware.AuthMiddleware())
		{
			reports.POST("", handlers.CreateReport)
			reports.GET("", handlers.ListMyReports)
			reports.GET("/:id", handlers.GetReport)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/career",
				middleware.RateLimit("chat", 20, time.Minute), handlers.CareerChat)
			chat.POST("/health",
				middleware.RateLimit("chat", 20, time.Minute), handlers.HealthChat)
		}

		// Meta calls this unauthenticated; signature verification happens in
		// the handler.
		webhook := api.Group("/whatsapp/webhook")
		{
			webhook.GET("", handlers.VerifyWhatsAppWebhook)
			webhook.POST("",
				middleware.RateLimit("webhook", 60, time.Minute), handlers.ReceiveWhatsAppWebhook)
		}

		stakeholder := api.Group("/stakeholder",
			middleware.AuthMiddleware(), middleware.RequireStakeholder())
		{
			stakeholder.GET("/opportunities", handlers.ListMyOpportunities)
			stakeholder.GET("/analytics", handlers.GetStakeholderAnalytics)
		}

		admin := api.Group("/admin",
			middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			admin.GET("/stats", handlers.GetAdminStats)
			admin.GET("/ws", handlers.ModerationFeed)

			admin.GET("/users", handlers.ListUsers)
			admin.GET("/users/:id", handlers.GetUser)
			admin.PATCH("/users/:id", handlers.UpdateUser)
			admin.POST("/users/:id/suspend", handlers.SuspendUser)
			admin.POST("/users/:id/unsuspend", handlers.UnsuspendUser)
			admin.DELETE("/users/:id", handlers.DeleteUser)

			admin.GET("/opportunities/pending", handlers.ListPendingOpportunities)
			admin.POST("/opportunities/:id/approve", handlers.ApproveOpportunity)
			admin.POST("/opportunities/:id/reject", handlers.RejectOpportunity)
			admin.PATCH("/opportunities/:id", handlers.PatchOpportunity)
			admin.GET("/opportunities/:id/fraud-check", handlers.CheckOpportunityFraud)

			admin.GET("/applications", handlers.ListAllApplications)

			admin.GET("/reports", handlers.ListReports)
			admin.PUT("/reports/:id/status", handlers.UpdateReportStatus)

			admin.GET("/whatsapp/submissions", handlers.ListSubmissions)
			admin.GET("/whatsapp/submissions/stats", handlers.GetSubmissionStats)
			admin.GET("/whatsapp/submissions/:id", handlers.GetSubmission)
			admin.PATCH("/whatsapp/submissions/:id", handlers.PatchSubmission)
			admin.POST("/whatsapp/submissions/:id/approve", handlers.ApproveSubmission)
			admin.POST("/whatsapp/submissions/:id/reject", handlers.RejectSubmission)
			admin.DELETE("/whatsapp/submissions/:id", handlers.DeleteSubmission)
		}
	}

	return r
}
