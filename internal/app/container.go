package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/roomly/roomly-backend/internal/api"
	"github.com/roomly/roomly-backend/internal/auth"
	"github.com/roomly/roomly-backend/internal/booking"
	"github.com/roomly/roomly-backend/internal/confirmation"
	"github.com/roomly/roomly-backend/internal/metrics"
	"github.com/roomly/roomly-backend/internal/notification"
	"github.com/roomly/roomly-backend/internal/room"
	"github.com/roomly/roomly-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	BaseURL      string
	Mailer       notification.MailerConfig
	Logger       zerolog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	metrics.Register()

	mailer := notification.NewMailer(cfg.Mailer, cfg.Logger)
	dispatcher := notification.NewEmailDispatcher(mailer, cfg.BaseURL, cfg.Logger)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, roomService, dispatcher, cfg.Logger)

	// Confirmation Module
	confirmationRepo := confirmation.NewPgxRepository(cfg.DBPool)
	confirmationService := confirmation.NewService(confirmationRepo)

	// API Router Config
	routerParams := api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		UserService:         userService,
		RoomService:         roomService,
		BookingService:      bookingService,
		ConfirmationService: confirmationService,
		JWTManager:          jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
