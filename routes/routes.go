package routes

import (
	"github.com/mustyusuf/publish-manuscript-portal-sub000/controllers"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/middleware"
	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)
			public.POST("/forgot-password", controllers.ForgotPassword)
			public.POST("/reset-password", controllers.ResetPassword)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Manuscript Review Portal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/logout", controllers.Logout)

			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/profile", controllers.UpdateProfile)
			protected.PUT("/change-password", controllers.ChangePassword)
			protected.GET("/users/:uuid/profile", controllers.GetUserProfile)

			// In-app notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Manuscripts (authors; admins may read any)
			manuscripts := protected.Group("/manuscripts")
			{
				manuscripts.POST("", middleware.RequireRole(models.RoleAuthor), controllers.CreateManuscript)
				manuscripts.GET("", middleware.RequireRole(models.RoleAuthor), controllers.GetMyManuscripts)
				manuscripts.GET("/:id", controllers.GetManuscript)
				manuscripts.GET("/:id/final-documents", controllers.GetFinalDocuments)
			}

			// Reviews (reviewers)
			reviews := protected.Group("/reviews")
			reviews.Use(middleware.RequireRole(models.RoleReviewer, models.RoleAdmin, models.RoleSuperAdmin))
			{
				reviews.GET("", controllers.GetMyReviews)
				reviews.GET("/:id", controllers.GetReview)
				reviews.PUT("/:id/start", controllers.StartReview)
				reviews.POST("/:id/submit", controllers.SubmitReview)
				reviews.POST("/:id/files", controllers.UploadAssessment)
			}

			// File downloads (row-level checks inside)
			protected.GET("/files/:file_id/download", controllers.DownloadFile)

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/manuscripts", controllers.ListManuscripts)
				admin.PUT("/manuscripts/:id", controllers.UpdateManuscript)
				admin.PUT("/manuscripts/:id/status", controllers.UpdateManuscriptStatus)
				admin.DELETE("/manuscripts/:id", controllers.DeleteManuscript)
				admin.POST("/manuscripts/:id/reviewers", controllers.AssignReviewers)
				admin.GET("/manuscripts/:id/reviews", controllers.ListManuscriptReviews)
				admin.POST("/manuscripts/:id/final-documents", controllers.UploadFinalDocument)
				admin.POST("/manuscripts/:id/send-documents", controllers.SendFinalDocuments)

				admin.POST("/reviews/:id/approve", controllers.ApproveReview)
				admin.POST("/reviews/:id/reject", controllers.RejectReview)
				admin.POST("/reviews/sweep-reminders", controllers.SweepReminders)
				admin.POST("/reviews/sweep-overdue", controllers.SweepOverdue)

				admin.GET("/users", controllers.ListUsers)
				admin.PUT("/users/:id/role", controllers.UpdateUserRole)
			}
		}
	}
}
