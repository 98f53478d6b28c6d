package app

import (
	"context"
	"log/slog"
	"time"

	httpapp "breate/internal/app/http"
	"breate/internal/config"
	"breate/internal/lib/hasher"
	"breate/internal/lib/logger/sl"
	"breate/internal/repository"
	"breate/internal/services/auth"
	catalogsvc "breate/internal/services/catalog_service"
	coalitionsvc "breate/internal/services/coalition_service"
	collabsvc "breate/internal/services/collab_service"
	projectsvc "breate/internal/services/project_service"
	tokensvc "breate/internal/services/token_service"
	usersvc "breate/internal/services/user_service"
	"breate/internal/storage/postgresql"
	redisapp "breate/internal/storage/redis"
	httprouters "breate/internal/transport/http"
)

const startupTimeout = 15 * time.Second

type App struct {
	HTTPServer *httpapp.Server

	log     *slog.Logger
	storage *postgresql.Storage
	redis   *redisapp.Client
}

// New wires every layer. It panics when a required backing service cannot be
// reached, since the process cannot serve anything without it.
func New(log *slog.Logger, cfg *config.Config) *App {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	if err := storage.EnsureSchema(ctx); err != nil {
		panic(err)
	}

	repo := repository.NewRepository(storage.Pool())

	// A nil interface, not a nil *RedisTokenRepo, disables revocation.
	var revocations auth.RevocationStore

	redisClient := redisapp.NewFromConfig(cfg.Redis)
	if redisClient != nil {
		if err := redisClient.HealthCheck(ctx); err != nil {
			panic(err)
		}
		revocations = repository.NewRedisTokenRepo(redisClient)
		log.Info("refresh token revocation enabled", slog.String("redis", cfg.Redis.RedisAddr))
	}

	tokens := tokensvc.NewTokenService(cfg.Auth)
	authService := auth.New(log, repo.User, repo.User, hasher.New(cfg.Hasher), tokens, revocations)

	routers := httprouters.NewRouter(log,
		httprouters.CookieConfig{
			Secure: cfg.Auth.CookieSecure,
			MaxAge: tokens.RefreshTTL(),
		},
		httprouters.Services{
			Auth:       authService,
			Users:      usersvc.NewUserService(log, repo.User),
			Catalog:    catalogsvc.NewCatalogService(log, repo.Archetype, repo.Tier),
			Coalitions: coalitionsvc.NewCoalitionService(log, repo.Coalition),
			Projects:   projectsvc.NewProjectService(log, repo.Project),
			Collab:     collabsvc.NewCollabService(log, repo.Collab, repo.User),
			DB:         storage,
		},
	)

	server := httpapp.New(log, cfg.HTTP, cfg.RateLimit, authService, routers)

	return &App{
		HTTPServer: server,
		log:        log,
		storage:    storage,
		redis:      redisClient,
	}
}

// Close releases the connections opened by New. Call it after the HTTP
// server has stopped.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("failed to close redis", sl.Err(err))
		}
	}

	a.storage.Stop()
}
