package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomly/roomly-backend/internal/auth"
	"github.com/roomly/roomly-backend/internal/booking"
	bookingHttp "github.com/roomly/roomly-backend/internal/booking/http"
	"github.com/roomly/roomly-backend/internal/confirmation"
	confirmationHttp "github.com/roomly/roomly-backend/internal/confirmation/http"
	"github.com/roomly/roomly-backend/internal/room"
	roomHttp "github.com/roomly/roomly-backend/internal/room/http"
	"github.com/roomly/roomly-backend/internal/user"
	userHttp "github.com/roomly/roomly-backend/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction        bool
	ProdOrigins         string
	UserService         user.Service
	RoomService         room.Service
	BookingService      booking.Service
	ConfirmationService confirmation.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// sysAdminMiddleware: Further checks if the authenticated user has System Admin privileges.
	sysAdminMiddleware := RequireSystemAdmin(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	confirmationHandler := confirmationHttp.NewHandler(cfg.ConfirmationService)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, sysAdminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		confirmationHttp.RegisterRoutes(v1, confirmationHandler)
	}

	return r
}
