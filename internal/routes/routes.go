package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
)

// SetupRoutes configures the application routes. limiter may be nil when no
// Redis backend is configured.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, limiter *middleware.RateLimiter) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		if limiter != nil {
			authRoutes.Use(limiter.Middleware())
		}
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(db, cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/change-password", authHandler.ChangePassword)
			authRoutesPrivate.POST("/doctor-request", authHandler.RequestDoctorApproval)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Admin lists and deletes; get/update allow self access, checked
			// in the handler.
			userRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.DeleteUser)
		}

		// Doctor registry routes
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.POST("", doctorHandler.CreateDoctorProfile)

			doctorRoutes.GET("/my-profile", doctorHandler.GetMyDoctorProfile)
			doctorRoutes.PUT("/my-profile", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.UpdateDoctorProfile)
			doctorRoutes.DELETE("/my-profile", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.DeleteDoctorProfile)

			doctorRoutes.GET("/my-reviews", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.GetMyReviews)
			doctorRoutes.POST("/:id/reviews", doctorHandler.AddReview)

			doctorRoutes.GET("/approved", doctorHandler.GetApprovedDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)

			adminDoctorRoutes := doctorRoutes.Group("/admin")
			adminDoctorRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminDoctorRoutes.GET("/pending", doctorHandler.GetPendingDoctors)
				adminDoctorRoutes.PUT("/approve/:id", doctorHandler.ApproveDoctor)
				adminDoctorRoutes.PUT("/reject/:id", doctorHandler.RejectDoctor)
				adminDoctorRoutes.DELETE("/delete/:id", doctorHandler.DeleteDoctorProfile)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.BookAppointment)
			appointmentRoutes.GET("/my-appointments", appointmentHandler.GetPatientAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.DELETE("/cancel/:id", appointmentHandler.CancelAppointment)

			doctorAppointmentRoutes := appointmentRoutes.Group("/doctor")
			doctorAppointmentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
			{
				doctorAppointmentRoutes.GET("/my-appointments", appointmentHandler.GetDoctorAppointments)
				doctorAppointmentRoutes.PUT("/confirm/:id", appointmentHandler.ConfirmAppointment)
				doctorAppointmentRoutes.PUT("/reject/:id", appointmentHandler.RejectAppointment)
				doctorAppointmentRoutes.PUT("/complete/:id", appointmentHandler.CompleteAppointment)
			}

			adminAppointmentRoutes := appointmentRoutes.Group("/admin")
			adminAppointmentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminAppointmentRoutes.GET("/appointments", appointmentHandler.GetAllAppointments)
				adminAppointmentRoutes.PUT("/payment/:id", appointmentHandler.UpdatePaymentStatus)
			}
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
