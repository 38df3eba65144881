package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stay-booking-backend/internal/api"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/eligibility"
	"github.com/nekogravitycat/stay-booking-backend/internal/friendship"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	// Redis is optional; without it connection lookups are not cached.
	Redis               *redis.Client
	JWTSecret           string
	JWTTTL              time.Duration
	BcryptCost          int
	ConnectionCacheTTL  time.Duration
	ApprovalMaxAttempts int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Friendship Module
	var connectionCache friendship.Cache
	if cfg.Redis != nil {
		connectionCache = friendship.NewRedisCache(cfg.Redis)
	}
	friendshipRepo := friendship.NewPgxRepository(cfg.DBPool)
	friendshipService := friendship.NewService(friendshipRepo, friendship.DefaultScorer(), connectionCache, cfg.ConnectionCacheTTL)

	// Property Module
	propertyRepo := property.NewPgxRepository(cfg.DBPool)
	propertyService := property.NewService(propertyRepo)

	// Availability Module
	calculator := availability.NewCalculator(availability.NewPgxReader(cfg.DBPool))

	// Eligibility Module
	evaluator := eligibility.NewEvaluator(friendshipService)
	eligibilityService := eligibility.NewService(propertyService, evaluator)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, propertyService, evaluator, calculator, cfg.ApprovalMaxAttempts)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		FriendshipService:  friendshipService,
		PropertyService:    propertyService,
		EligibilityService: eligibilityService,
		BookingService:     bookingService,
		Calculator:         calculator,
		JWTManager:         jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
	}
}
