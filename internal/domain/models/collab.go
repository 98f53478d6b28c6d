package models

import "time"

const (
	CollabStatusPending  = "pending"
	CollabStatusVerified = "verified"
)

type CollabLink struct {
	ID            int64      `db:"id" json:"id"`
	UserAUsername string     `db:"user_a_username" json:"user_a_username"`
	UserBUsername string     `db:"user_b_username" json:"user_b_username"`
	ProjectName   *string    `db:"project_name" json:"project_name"`
	Status        string     `db:"status" json:"status"`
	VerifiedAt    *time.Time `db:"verified_at" json:"verified_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Involves reports whether username is one of the two parties.
func (l CollabLink) Involves(username string) bool {
	return l.UserAUsername == username || l.UserBUsername == username
}

// Collaborator returns the party that is not username.
func (l CollabLink) Collaborator(username string) string {
	if l.UserAUsername == username {
		return l.UserBUsername
	}

	return l.UserAUsername
}

// CollabEntry is one row of a user's collab circle, seen from that user.
type CollabEntry struct {
	CollaboratorUsername string     `json:"collaborator_username"`
	ProjectName          *string    `json:"project_name"`
	Status               string     `json:"status"`
	VerifiedAt           *time.Time `json:"verified_at"`
}

// Entry projects l onto the side of username.
func (l CollabLink) Entry(username string) CollabEntry {
	return CollabEntry{
		CollaboratorUsername: l.Collaborator(username),
		ProjectName:          l.ProjectName,
		Status:               l.Status,
		VerifiedAt:           l.VerifiedAt,
	}
}
