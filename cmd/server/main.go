package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/shoprank/backend/config"
	httpDelivery "github.com/shoprank/backend/internal/delivery/http"
	"github.com/shoprank/backend/internal/domain"
	"github.com/shoprank/backend/internal/infrastructure/cache"
	"github.com/shoprank/backend/internal/infrastructure/naver"
	"github.com/shoprank/backend/internal/infrastructure/sqlite"
	"github.com/shoprank/backend/internal/scheduler"
	"github.com/shoprank/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ShopRank Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Database: %s", cfg.Storage.Path)

	// Initialize infrastructure dependencies
	store, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	naverClient := naver.NewClient(cfg.Naver, cfg.Naver.BaseURL)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		naverClient.SetDebug(true)
		log.Printf("Naver client debug mode enabled")
	}

	if _, _, ok := cfg.Naver.Credentials(); ok {
		log.Printf("Naver API configured: %s (client id: %s...)", cfg.Naver.BaseURL, cfg.Naver.ClientID[:4])
	} else {
		log.Printf("WARNING: Naver API credentials not configured - tracking runs will fail fast!")
	}

	var search domain.SearchClient = naverClient
	if cfg.Cache.Enabled {
		search = naver.NewCachedClient(search, cache.NewPageCache(cfg.Cache.TTL))
		log.Printf("Search page cache enabled, TTL: %s", cfg.Cache.TTL)
	}

	// Initialize usecase layer
	finder := usecase.NewRankFinder(search, usecase.TraversalConfig{
		MaxPages:  cfg.Tracking.MaxPages,
		PageSize:  cfg.Tracking.PageSize,
		PageDelay: cfg.Tracking.PageDelay,
	})
	orchestrator := usecase.NewOrchestrator(store, cfg.Naver, finder, usecase.OrchestratorConfig{
		PairDelay: cfg.Tracking.PairDelay,
	})
	coordinator := usecase.NewCoordinator(orchestrator, store)

	log.Printf("Tracking: max_pages=%d page_size=%d page_delay=%s pair_delay=%s",
		cfg.Tracking.MaxPages, cfg.Tracking.PageSize, cfg.Tracking.PageDelay, cfg.Tracking.PairDelay)

	// Periodic trigger
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(coordinator, cfg.Scheduler.Interval)
		go sched.Start(context.Background())
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(coordinator, store)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
