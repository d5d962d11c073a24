package routes

import (
	"net/http"

	"journal-api/config"
	"journal-api/handlers"
	"journal-api/helper"
	"journal-api/middleware"
	"journal-api/models"
	"journal-api/repositories"
	"journal-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Article      *handlers.ArticleHandler
	Issue        *handlers.IssueHandler
	Notification *handlers.NotificationHandler
}

// NewHandlers wires repositories, services and handlers over db. A nil
// mailer keeps notifications in the database only and disables password
// reset links.
func NewHandlers(db *gorm.DB, mailer services.Mailer) Handlers {
	userRepo := repositories.NewUserRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	notificationService := services.NewNotificationService(notificationRepo, userRepo, mailer, config.AppBaseURL())
	authService := services.NewAuthService(userRepo, resetRepo, mailer, config.AppBaseURL())
	articleService := services.NewArticleService(articleRepo, userRepo, config.DOIPrefix())
	reviewService := services.NewReviewService(articleRepo, userRepo, notificationService)
	publicationService := services.NewPublicationService(articleRepo, issueRepo)

	h := helper.NewHTTPHelper()
	return Handlers{
		Auth:         handlers.NewAuthHandler(authService, h),
		Article:      handlers.NewArticleHandler(articleService, reviewService, publicationService, h),
		Issue:        handlers.NewIssueHandler(publicationService, h),
		Notification: handlers.NewNotificationHandler(notificationService, h),
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	admin := middleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}

		// Public issue archive
		v1.GET("/issues", h.Issue.ListIssues)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", h.Auth.GetProfile)
			protected.PUT("/profile", h.Auth.UpdateProfile)
			protected.GET("/users", admin, h.Auth.ListUsers)

			articles := protected.Group("/articles")
			{
				articles.GET("", h.Article.GetArticles)
				articles.POST("", h.Article.SubmitArticle)
				articles.GET("/mine", h.Article.GetMyArticles)
				articles.GET("/assigned", h.Article.GetAssignedArticles)
				articles.GET("/stats", admin, h.Article.GetStats)
				articles.GET("/next-number", admin, h.Article.NextArticleNumber)
				articles.GET("/:id", h.Article.GetArticle)
				articles.PUT("/:id", h.Article.UpdateArticle)
				articles.PUT("/:id/assign", admin, h.Article.InviteReviewer)
				articles.PUT("/:id/respond-invitation", h.Article.RespondInvitation)
				articles.PUT("/:id/doi", admin, h.Article.AssignDOI)
				articles.PUT("/:id/issue", admin, h.Article.PublishToIssue)
				articles.DELETE("/:id/issue", admin, h.Article.ResetIssueAssignment)
				articles.PUT("/:id/pdf", admin, h.Article.UpdatePDF)
			}

			issues := protected.Group("/issues")
			issues.Use(admin)
			{
				issues.GET("/next-number/:volume", h.Issue.NextIssueNumber)
				issues.POST("/publish", h.Issue.PublishIssue)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.GetNotifications)
				notifications.GET("/unread-count", h.Notification.GetUnreadCount)
				notifications.GET("/admin", admin, h.Notification.GetAllNotifications)
				notifications.POST("", admin, h.Notification.CreateNotification)
				notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
				notifications.PUT("/:id/read", h.Notification.MarkAsRead)
				notifications.DELETE("/:id", admin, h.Notification.DeleteNotification)
			}
		}
	}
}
