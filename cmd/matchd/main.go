// cmd/matchd/main.go
// Entry point for the match materialization daemon.
// Wires the profile, social, and matching services, starts the
// background scheduler, and serves the operational endpoints.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vivahsetu/vivah-backend/internal/common/database"
	"github.com/vivahsetu/vivah-backend/internal/config"
	"github.com/vivahsetu/vivah-backend/internal/matching"
	"github.com/vivahsetu/vivah-backend/internal/profile"
	"github.com/vivahsetu/vivah-backend/internal/social"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// Redis is optional: without it the score cache degrades to no-ops.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable (%v), continuing without score cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	matchRepo := matching.NewPostgresRepository(db)
	scoreCache := matching.NewScoreCache(redisClient, cfg.ScoreCacheTTL)
	matchService := matching.NewService(
		matchRepo,
		matching.NewScoreEngine(),
		scoreCache,
		matching.Config{
			MaxMatchesPerUser: cfg.MaxMatchesPerUser,
			MinScore:          cfg.MatchingScore,
			ScoreCacheTTL:     cfg.ScoreCacheTTL,
			ApprovalLookback:  cfg.ApprovalLookback,
			StaleHorizon:      cfg.StaleMatchHorizon,
		},
	)

	profileService := profile.NewService(profile.NewPostgresRepository(db), matchService)
	socialService := social.NewService(social.NewPostgresRepository(db), matchService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := matching.NewScheduler(matchService)
	scheduler.Start(ctx)
	log.Println("Background scheduler started")

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Internal triggers used by the moderation console and ops tooling.
	// The product API in front of profiles, requests, and favorites
	// lives in a separate service.
	registerInternalRoutes(router, matchService, profileService, socialService)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Operational listener on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
