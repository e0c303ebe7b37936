package main // Entry point package

import (
	"context"
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/collab-shopping/internal/config"
	"github.com/iliyamo/collab-shopping/internal/database"
	"github.com/iliyamo/collab-shopping/internal/handler"
	"github.com/iliyamo/collab-shopping/internal/middleware"
	"github.com/iliyamo/collab-shopping/internal/model"
	"github.com/iliyamo/collab-shopping/internal/queue"
	"github.com/iliyamo/collab-shopping/internal/repository"
	"github.com/iliyamo/collab-shopping/internal/router"
	queue_publisher "github.com/iliyamo/collab-shopping/internal/service"
	"github.com/iliyamo/collab-shopping/internal/store"
)

// catalogAdapter narrows ProductRepo to the Catalog interface the
// dispatch handler consumes.
type catalogAdapter struct {
	repo *repository.ProductRepo
}

func (a catalogAdapter) GetProduct(ctx context.Context, id uint64) (*model.Product, error) {
	return a.repo.GetByID(ctx, id)
}

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Redis backs the session store (optionally), rate limiting and the
	// catalog response cache.  A nil client degrades all three.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; using in-memory store, no rate limit, no cache")
	}

	// Pick the session store backend.
	var sessions store.Store
	if cfg.StoreKind == "redis" && rdb != nil {
		sessions = store.NewRedisStore(rdb, cfg.SessionTTL)
		log.Printf("session store: redis (ttl=%s)", cfg.SessionTTL)
	} else {
		sessions = store.NewMemoryStore(cfg.SessionTTL)
		log.Printf("session store: memory (ttl=%s)", cfg.SessionTTL)
	}

	// The catalog is optional; without it addItem requires productData.
	var catalog handler.Catalog
	var products *repository.ProductRepo
	if cfg.CatalogEnabled() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("catalog database: %v", err)
		}
		products = repository.NewProductRepo(db)
		catalog = catalogAdapter{repo: products}
	}

	// Background consumer turns activity events into logs/activity.log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.Use(middleware.ParticipantIdentity(cfg.TokenSecret))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	collab := handler.NewCollabHandler(sessions, catalog, queue_publisher.PublishSessionActivity, cfg.TokenSecret, cfg.TokenTTL)

	router.RegisterRoutes(e)
	router.RegisterCollab(e, collab)
	if products != nil {
		cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
		router.RegisterCatalog(e, handler.NewCatalogHandler(products), cacheMW)
	}

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
