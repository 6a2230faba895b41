package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/tripbay/internal/container"
	"github.com/joshua-takyi/tripbay/internal/handlers"
	"github.com/joshua-takyi/tripbay/internal/helpers"
	"github.com/joshua-takyi/tripbay/internal/middleware"
	"github.com/joshua-takyi/tripbay/internal/observability"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "tripbay-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.Login(container.UserService))
		v1.POST("/logout", handlers.Logout())
		v1.POST("/verify-otp", handlers.VerifyOTP(container.UserService))
		v1.POST("/resend-otp", handlers.ResendOTP(container.UserService))

		v1.GET("/hotels", handlers.ListHotels(container.HotelService))
		v1.GET("/hotels/:id", handlers.GetHotel(container.HotelService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))

	protected.GET("/profile", func(c *gin.Context) {
		user, exist := c.Get("user")
		if !exist {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		enhancedClaims, ok := user.(*helpers.EnhancedClaims)
		if !ok {
			c.JSON(500, gin.H{"error": "Invalid user claims format"})
			return
		}

		c.JSON(200, gin.H{
			"status":      "OK",
			"user_id":     enhancedClaims.UserID,
			"email":       enhancedClaims.Email,
			"role":        enhancedClaims.Role,
			"username":    enhancedClaims.Username,
			"is_admin":    enhancedClaims.IsAdmin(),
			"is_verified": enhancedClaims.IsVerified,
		})
	})

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
	}

	// Booking drafts walk through the three checkout steps; every mutation
	// reloads the draft from the store so stale clients get a clean 404.
	draftRoutes := protected.Group("/drafts")
	{
		draftRoutes.POST("/", handlers.OpenDraft(container.BookingFlowService))
		draftRoutes.GET("/:id", handlers.GetDraft(container.BookingFlowService))
		draftRoutes.DELETE("/:id", handlers.CloseDraft(container.BookingFlowService))

		draftRoutes.PATCH("/:id/stay", handlers.UpdateStay(container.BookingFlowService))
		draftRoutes.POST("/:id/coupon", handlers.ApplyCoupon(container.BookingFlowService))
		draftRoutes.DELETE("/:id/coupon", handlers.RemoveCoupon(container.BookingFlowService))

		draftRoutes.POST("/:id/guests", handlers.AddGuest(container.BookingFlowService))
		draftRoutes.DELETE("/:id/guests/:guest_id", handlers.RemoveGuest(container.BookingFlowService))
		draftRoutes.PATCH("/:id/guests/:guest_id", handlers.UpdateGuest(container.BookingFlowService))
		draftRoutes.PATCH("/:id/contact", handlers.SetContact(container.BookingFlowService))
		draftRoutes.PATCH("/:id/terms", handlers.SetTerms(container.BookingFlowService))

		draftRoutes.POST("/:id/advance", handlers.AdvanceStep(container.BookingFlowService))
		draftRoutes.POST("/:id/back", handlers.BackStep(container.BookingFlowService))

		draftRoutes.POST("/:id/payment/order", handlers.CreatePaymentOrder(container.BookingFlowService, container.PaymentService))
		draftRoutes.POST("/:id/payment/verify", handlers.VerifyPayment(container.BookingFlowService, container.PaymentService))
		draftRoutes.POST("/:id/payment/cancel", handlers.CancelPayment(container.PaymentService))
		draftRoutes.POST("/:id/payment/demo", handlers.PayDemo(container.BookingFlowService, container.PaymentService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.GET("/", handlers.ListMyBookings(container.BookingService))
		bookingRoutes.GET("/:id/voucher", handlers.DownloadVoucher(container.BookingService, container.VoucherService))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	{
		admin.POST("/hotels", handlers.CreateHotel(container.HotelService))
		admin.PATCH("/hotels/:id", handlers.UpdateHotel(container.HotelService))
		admin.GET("/reports/summary", handlers.ReportSummary(container.ReportService))
	}

	return r
}
