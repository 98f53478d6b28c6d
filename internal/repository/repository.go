package repository

import (
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
)

// likeEscaper makes user input match literally inside a LIKE pattern.
// Backslash is the default LIKE escape character in Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type Repository struct {
	User      UserRepository
	Archetype ArchetypeRepository
	Tier      TierRepository
	Coalition CoalitionRepository
	Project   ProjectRepository
	Collab    CollabRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		User:      NewUserRepository(db),
		Archetype: NewArchetypeRepository(db),
		Tier:      NewTierRepository(db),
		Coalition: NewCoalitionRepository(db),
		Project:   NewProjectRepository(db),
		Collab:    NewCollabRepository(db),
	}
}
