package router

import (
	"database/sql"

	"gym_backend/internal/cache"
	"gym_backend/internal/config"
	"gym_backend/internal/handlers"
	"gym_backend/internal/middleware"
	"gym_backend/internal/repositories"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Services bundles every service the HTTP layer and the background jobs depend on.
type Services struct {
	Auth        services.AuthService
	Member      services.MemberService
	Inventory   services.InventoryService
	Trainer     services.TrainerService
	Booking     services.BookingService
	Testimonial services.TestimonialService
	Note        services.NoteService
	Statistics  services.StatisticsService
	Probe       services.ProbeService
}

// NewServices wires repositories into services.
func NewServices(db *sql.DB, cfg *config.Config, tokens *utils.TokenManager, statsCache cache.Cache) *Services {
	// Initialize Repositories
	tx := repositories.NewTxRunner(db)
	authRepo := repositories.NewAuthRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	itemRepo := repositories.NewInventoryRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	trainerRepo := repositories.NewTrainerRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	testimonialRepo := repositories.NewTestimonialRepository(db)
	noteRepo := repositories.NewNoteRepository(db)
	probeRepo := repositories.NewProbeRepository(db)
	dashboard := services.NewDashboardCache(statsCache)

	// Initialize Services
	return &Services{
		Auth:        services.NewAuthService(authRepo, memberRepo, tx, tokens, cfg.PhoneRegion),
		Member:      services.NewMemberService(memberRepo, tx, cfg.Location, cfg.PhoneRegion, dashboard),
		Inventory:   services.NewInventoryService(itemRepo, movementRepo, tx, dashboard),
		Trainer:     services.NewTrainerService(trainerRepo, tx),
		Booking:     services.NewBookingService(bookingRepo, memberRepo, trainerRepo, tx, cfg.Location, dashboard),
		Testimonial: services.NewTestimonialService(testimonialRepo, memberRepo, tx, dashboard),
		Note:        services.NewNoteService(noteRepo, tx, cfg.Location),
		Statistics:  services.NewStatisticsService(memberRepo, testimonialRepo, bookingRepo, itemRepo, statsCache, cfg.StatsCacheTTL, cfg.Location),
		Probe:       services.NewProbeService(probeRepo, memberRepo),
	}
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, svc *Services, tokens *utils.TokenManager) {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	memberHandler := handlers.NewMemberHandler(svc.Member)
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory)
	trainerHandler := handlers.NewTrainerHandler(svc.Trainer)
	bookingHandler := handlers.NewBookingHandler(svc.Booking)
	testimonialHandler := handlers.NewTestimonialHandler(svc.Testimonial)
	noteHandler := handlers.NewNoteHandler(svc.Note)
	statisticsHandler := handlers.NewStatisticsHandler(svc.Statistics)
	probeHandler := handlers.NewProbeHandler(svc.Probe)

	engine.GET("/ping", probeHandler.Ping)

	apiV1 := engine.Group("/api/v1")

	// Public routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)
	SetupProbeRoutes(apiV1.Group("/probe"), probeHandler)
	apiV1.GET("/testimonials", testimonialHandler.GetPublicTestimonials)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(tokens, svc.Auth))
	{
		authenticated.GET("/auth/session", authHandler.CurrentSession)
		authenticated.GET("/trainers", middleware.RoleAuthMiddleware(utils.RoleAdmin, utils.RoleMember), trainerHandler.GetTrainers)

		admin := authenticated.Group("/admin")
		admin.Use(middleware.RoleAuthMiddleware(utils.RoleAdmin))
		{
			SetupMemberRoutes(admin, memberHandler)
			SetupInventoryRoutes(admin, inventoryHandler)
			SetupTrainerRoutes(admin, trainerHandler)
			SetupAdminBookingRoutes(admin, bookingHandler)
			SetupAdminTestimonialRoutes(admin, testimonialHandler)
			SetupNoteRoutes(admin, noteHandler)
			admin.GET("/statistics", statisticsHandler.GetDashboard)
		}

		member := authenticated.Group("/member")
		member.Use(middleware.RoleAuthMiddleware(utils.RoleMember))
		{
			SetupMemberPortalRoutes(member, memberHandler, bookingHandler, testimonialHandler)
		}
	}
}
