package container

import (
	"log/slog"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/joshua-takyi/tripbay/internal/edge"
	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/services"
	"github.com/joshua-takyi/tripbay/internal/store"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client

	Notifier *services.NotificationService

	UserService        *services.UserService
	HotelService       *services.HotelService
	BookingFlowService *services.BookingFlowService
	PaymentService     *services.PaymentService
	BookingService     *services.BookingService
	VoucherService     *services.VoucherService
	ReportService      *services.ReportService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	edgeClient *edge.Client,
	supaUrl, supaKey string,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongo := models.MongodbNewRepo(mongoDBClient)

	drafts := store.NewDraftStore(redisClient, 45*time.Minute)
	otps := store.NewOTPStore(redisClient, 10*time.Minute)
	cache := store.NewCache(redisClient)

	notifier := services.NewNotificationService(edgeClient, logger, 64)

	userService := services.NewUserService(supa, otps, edgeClient, logger)
	hotelService := services.NewHotelService(supa, cache, logger)
	bookingFlowService := services.NewBookingFlowService(drafts, supa, supa, logger)
	paymentService := services.NewPaymentService(edgeClient, supa, mongo, drafts, notifier, logger)
	bookingService := services.NewBookingService(supa)
	voucherService := services.NewVoucherService()
	reportService := services.NewReportService(mongo)

	return &Container{
		Logger:             logger,
		Cloudinary:         cloudinary,
		SupabaseClient:     supabaseClient,
		MongoDBClient:      mongoDBClient,
		RedisClient:        redisClient,
		Notifier:           notifier,
		UserService:        userService,
		HotelService:       hotelService,
		BookingFlowService: bookingFlowService,
		PaymentService:     paymentService,
		BookingService:     bookingService,
		VoucherService:     voucherService,
		ReportService:      reportService,
	}
}
