package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/stay-booking-backend/internal/availability/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/stay-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/eligibility"
	eligibilityHttp "github.com/nekogravitycat/stay-booking-backend/internal/eligibility/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/friendship"
	friendshipHttp "github.com/nekogravitycat/stay-booking-backend/internal/friendship/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/logging"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
	propertyHttp "github.com/nekogravitycat/stay-booking-backend/internal/property/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/stay-booking-backend/internal/user/http"
)

// Config holds the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	FriendshipService  friendship.Service
	PropertyService    property.Service
	EligibilityService eligibility.Service
	BookingService     booking.Service
	Calculator         *availability.Calculator
	JWTManager         *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs one structured line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logging.Middleware(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Web client
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// activeUserMiddleware: Further checks that the token's user still exists and is active.
	activeUserMiddleware := RequireActiveUser(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	friendshipHandler := friendshipHttp.NewHandler(cfg.FriendshipService)
	propertyHandler := propertyHttp.NewHandler(cfg.PropertyService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.Calculator)
	eligibilityHandler := eligibilityHttp.NewHandler(cfg.EligibilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		friendshipHttp.RegisterRoutes(v1, friendshipHandler, authMiddleware, activeUserMiddleware)
		propertyHttp.RegisterRoutes(v1, propertyHandler, authMiddleware, activeUserMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware, activeUserMiddleware)
		eligibilityHttp.RegisterRoutes(v1, eligibilityHandler, authMiddleware, activeUserMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, activeUserMiddleware)
	}

	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
