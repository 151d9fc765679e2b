package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym_backend/internal/cache"
	"gym_backend/internal/config"
	"gym_backend/internal/database"
	"gym_backend/internal/jobs"
	"gym_backend/internal/middleware"
	"gym_backend/internal/router"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.Log)
	gin.SetMode(cfg.GinMode)
	validation.SetPhoneRegion(cfg.PhoneRegion)
	validation.BindGin()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	var statsCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			utils.LogWarn("Redis unavailable, statistics cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer client.Close()
			statsCache = cache.NewRedisCache(client, "gym:")
		}
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	svc := router.NewServices(db, cfg, tokens, statsCache)

	created, err := svc.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}
	if created {
		utils.LogInfo("Admin account bootstrapped", map[string]interface{}{"username": cfg.AdminUsername})
	}

	scheduler := jobs.NewScheduler(cfg.Location, 5*time.Minute)
	if err := scheduler.Add(cfg.LedgerReconcileSchedule, jobs.NewLedgerReconcileJob(svc.Inventory)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule ledger reconciliation")
	}
	if err := scheduler.Add(cfg.ExpirySweepSchedule, jobs.NewExpirySweepJob(svc.Member)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule expiry sweep")
	}
	scheduler.Start()

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, svc, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "timezone": cfg.Location.String()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shut down")
	}
	scheduler.Stop(shutdownCtx)
	utils.LogInfo("Server stopped")
}
