package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/repository"
	"github.com/noah-isme/college-enrolment-api/internal/service"
	"github.com/noah-isme/college-enrolment-api/migrations"
	"github.com/noah-isme/college-enrolment-api/pkg/cache"
	"github.com/noah-isme/college-enrolment-api/pkg/config"
	"github.com/noah-isme/college-enrolment-api/pkg/database"
	"github.com/noah-isme/college-enrolment-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Up(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	seeder := service.NewSeedService(repository.NewCourseRepository(db), repository.NewSeedRepository(db), logr)
	if redisClient, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, cached analytics not purged", zap.Error(err))
	} else {
		defer redisClient.Close()
		seeder.UseCache(service.NewCacheService(repository.NewCacheRepository(redisClient), nil, cfg.Analytics.CacheTTL, logr, true))
	}

	rng := rand.New(rand.NewSource(cfg.Seed.RandomSeed))
	if _, err := seeder.Seed(ctx, rng); err != nil {
		logr.Fatal("seeding failed", zap.Error(err))
	}
}
