package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lendstock/internal/config"
	"lendstock/internal/handlers"
	"lendstock/internal/models"
	"lendstock/internal/repositories"
	"lendstock/internal/services"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		// Ledger entries outlive their item/user rows; no FK constraints.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := models.Migrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	itemRepo := repositories.NewItemRepository(db)
	userRepo := repositories.NewUserRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)

	catalogService := services.NewCatalogService(db, itemRepo)
	userService := services.NewUserService(db, userRepo)
	ledgerService := services.NewLedgerService(db, itemRepo, userRepo, transactionRepo)

	router := gin.Default()
	if cfg.WebOrigin != "" {
		handlers.UseCORS(router, cfg.WebOrigin)
	}

	handlers.RegisterRoutes(router, catalogService, userService, ledgerService)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
