package models

import "time"

// User is the stored identity together with its public profile.
type User struct {
	ID              int64     `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Username        *string   `db:"username" json:"username"`
	PasswordHash    string    `db:"password" json:"-"`
	FullName        *string   `db:"full_name" json:"full_name"`
	Bio             *string   `db:"bio" json:"bio"`
	PreferredThemes *string   `db:"preferred_themes" json:"preferred_themes"`
	PortfolioLinks  *string   `db:"portfolio_links" json:"portfolio_links"`
	NextBuild       *string   `db:"next_build" json:"next_build"`
	Affiliations    *string   `db:"affiliations" json:"affiliations"`
	ArchetypeID     *int64    `db:"archetype_id" json:"archetype_id"`
	TierID          *int64    `db:"tier_id" json:"tier_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// UsernameOrEmpty dereferences the nullable username.
func (u User) UsernameOrEmpty() string {
	if u.Username == nil {
		return ""
	}

	return *u.Username
}

// ProfileUpdate lists the only columns a profile owner may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FullName        *string
	Username        *string
	Bio             *string
	PreferredThemes *string
	PortfolioLinks  *string
	NextBuild       *string
	Affiliations    *string
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.Username == nil && p.Bio == nil &&
		p.PreferredThemes == nil && p.PortfolioLinks == nil &&
		p.NextBuild == nil && p.Affiliations == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = p.FullName
	}
	if p.Username != nil {
		u.Username = p.Username
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	if p.PreferredThemes != nil {
		u.PreferredThemes = p.PreferredThemes
	}
	if p.PortfolioLinks != nil {
		u.PortfolioLinks = p.PortfolioLinks
	}
	if p.NextBuild != nil {
		u.NextBuild = p.NextBuild
	}
	if p.Affiliations != nil {
		u.Affiliations = p.Affiliations
	}
}

// UserFilter narrows the discover listing.
type UserFilter struct {
	Name        string
	ArchetypeID *int64
	TierID      *int64
}

// Creator is a discover row: a user joined with its archetype and tier names.
type Creator struct {
	ID        int64   `json:"id"`
	Username  *string `json:"username"`
	Bio       *string `json:"bio"`
	Archetype *string `json:"archetype"`
	Tier      *string `json:"tier"`
}
