package repository

import (
	"context"
	"time"

	"breate/internal/domain/models"
)

// UserRepository is the credential store plus the profile queries built on it.
type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, userID int64) (models.User, error)
	UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.Creator, error)
}

type ArchetypeRepository interface {
	ListArchetypes(ctx context.Context) ([]models.Archetype, error)
	ArchetypeByID(ctx context.Context, id int64) (models.Archetype, error)
	SaveArchetype(ctx context.Context, archetype models.Archetype) (models.Archetype, error)
	DeleteArchetype(ctx context.Context, id int64) error
}

type TierRepository interface {
	ListTiers(ctx context.Context) ([]models.Tier, error)
	TierByID(ctx context.Context, id int64) (models.Tier, error)
	SaveTier(ctx context.Context, tier models.Tier) (models.Tier, error)
	DeleteTier(ctx context.Context, id int64) error
}

type CoalitionRepository interface {
	ListCoalitions(ctx context.Context, filter models.CoalitionFilter) ([]models.Coalition, error)
	CoalitionByID(ctx context.Context, id int64) (models.Coalition, error)
	SaveCoalition(ctx context.Context, coalition models.Coalition) (models.Coalition, error)
	DeleteCoalition(ctx context.Context, id int64) (string, error)
	AddMember(ctx context.Context, coalitionID, userID int64) error
	RemoveMember(ctx context.Context, coalitionID, userID int64) error
	Members(ctx context.Context, coalitionID int64) ([]models.User, error)
}

type ProjectRepository interface {
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	ProjectByID(ctx context.Context, id int64) (models.Project, error)
	SaveProject(ctx context.Context, project models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

type CollabRepository interface {
	CreateLink(ctx context.Context, link models.CollabLink) (models.CollabLink, error)
	FindLink(ctx context.Context, usernameA, usernameB string) (models.CollabLink, error)
	VerifyLink(ctx context.Context, linkID int64, at time.Time) error
	LinksByUsername(ctx context.Context, username string) ([]models.CollabLink, error)
}

// TokenRepository remembers revoked refresh tokens until they would expire anyway.
type TokenRepository interface {
	RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}
