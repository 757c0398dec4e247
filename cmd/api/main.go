package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"shop-backend/internal/api/handlers"
	"shop-backend/internal/auth"
	"shop-backend/internal/blob"
	"shop-backend/internal/cache"
	"shop-backend/internal/database"
	"shop-backend/internal/models"
	"shop-backend/internal/repository"
)

func main() {
	cfg, err := database.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}
	defer pool.Close()

	ctx := context.Background()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("migrations failed: ", err)
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		log.Fatal("failed to init auth: ", err)
	}

	blobs, err := blob.NewDiskStore(cfg.UploadsDir, cfg.UploadsPublicPrefix)
	if err != nil {
		log.Fatal("failed to init blob store: ", err)
	}

	userRepo := repository.NewUserRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	statusRepo := repository.NewStatusRepository(pool)
	configRepo := repository.NewConfigRepository(pool)

	var productRepo repository.ProductRepository = repository.NewProductRepository(pool)
	if rdb, err := cache.ConnectRedis(cfg); err != nil {
		log.Printf("redis unavailable, running without product cache: %v", err)
	} else {
		productRepo = cache.NewCachedProductRepository(productRepo, rdb)
	}

	if err := seedAdmin(ctx, cfg, userRepo); err != nil {
		log.Fatal("failed to seed admin user: ", err)
	}

	router := handlers.NewRouter(
		tokens,
		handlers.NewAuthHandler(userRepo, tokens),
		handlers.NewProductHandler(productRepo, blobs),
		handlers.NewOrderHandler(orderRepo),
		handlers.NewUserHandler(userRepo),
		handlers.NewConfigHandler(configRepo, statusRepo),
		cfg.UploadsDir,
		cfg.UploadsPublicPrefix,
	)

	addr := ":" + cfg.HTTPPort
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}

// seedAdmin provisions the initial manager account from the environment on
// first start. Credentials are never compiled into the binary.
func seedAdmin(ctx context.Context, cfg *database.Config, users repository.UserRepository) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	email := cfg.AdminEmail
	if email == "" {
		email = cfg.AdminUsername + "@localhost"
	}

	admin := models.User{
		Username:     cfg.AdminUsername,
		Email:        email,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, &admin); err != nil {
		return err
	}

	log.Printf("seeded admin user %q", cfg.AdminUsername)
	return nil
}
