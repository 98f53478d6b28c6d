package http

import (
	"context"
	"log/slog"
	"time"

	"breate/internal/domain/models"
	"breate/internal/services/auth"

	_ "breate/docs"
)

type AuthService interface {
	RegisterNewUser(ctx context.Context, in auth.RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, user models.User, current, next string) error
}

type UserService interface {
	Profile(ctx context.Context, username string) (models.User, error)
	UpdateProfile(ctx context.Context, actor models.User, username string, update models.ProfileUpdate) (models.User, error)
	Discover(ctx context.Context, filter models.UserFilter) ([]models.Creator, error)
}

type CatalogService interface {
	ListArchetypes(ctx context.Context) ([]models.Archetype, error)
	Archetype(ctx context.Context, id int64) (models.Archetype, error)
	CreateArchetype(ctx context.Context, archetype models.Archetype) (models.Archetype, error)
	DeleteArchetype(ctx context.Context, id int64) error
	ListTiers(ctx context.Context) ([]models.Tier, error)
	Tier(ctx context.Context, id int64) (models.Tier, error)
	CreateTier(ctx context.Context, tier models.Tier) (models.Tier, error)
	DeleteTier(ctx context.Context, id int64) error
}

type CoalitionService interface {
	List(ctx context.Context, filter models.CoalitionFilter) ([]models.Coalition, error)
	Get(ctx context.Context, id int64) (models.Coalition, error)
	Create(ctx context.Context, coalition models.Coalition) (models.Coalition, error)
	Delete(ctx context.Context, id int64) (string, error)
	Join(ctx context.Context, coalitionID, userID int64) error
	Leave(ctx context.Context, coalitionID, userID int64) error
	Members(ctx context.Context, coalitionID int64) ([]models.User, error)
}

type ProjectService interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	Get(ctx context.Context, id int64) (models.Project, error)
	Create(ctx context.Context, poster models.User, project models.Project) (models.Project, error)
	Delete(ctx context.Context, actor models.User, id int64) (string, error)
}

type CollabService interface {
	Create(ctx context.Context, actor models.User, userA, userB string, projectName *string) (models.CollabLink, error)
	Verify(ctx context.Context, actor models.User, userA, userB string) (models.CollabLink, error)
	Circle(ctx context.Context, username string) ([]models.CollabEntry, error)
}

type HealthChecker interface {
	Version(ctx context.Context) (string, error)
}

// Services groups the use cases the routers expose.
type Services struct {
	Auth       AuthService
	Users      UserService
	Catalog    CatalogService
	Coalitions CoalitionService
	Projects   ProjectService
	Collab     CollabService
	DB         HealthChecker
}

// CookieConfig controls the refresh token cookie set at login.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type Routers struct {
	log *slog.Logger
	Services
	cookie CookieConfig
}

func NewRouter(log *slog.Logger, cookie CookieConfig, services Services) *Routers {
	return &Routers{
		log:      log,
		Services: services,
		cookie:   cookie,
	}
}
