package dto

import "breate/internal/domain/models"

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	Username    *string `json:"username"`
	ArchetypeID *int64  `json:"archetype_id"`
	TierID      *int64  `json:"tier_id"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		ArchetypeID: u.ArchetypeID,
		TierID:      u.TierID,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}

	return out
}

type RegisteredUser struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Username *string `json:"username"`
}

type RegisterResponse struct {
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// ProfileUpdateRequest lists the only fields a profile owner may change.
// Absent fields are left untouched; unknown fields are rejected.
type ProfileUpdateRequest struct {
	FullName        *string `json:"full_name" validate:"omitempty,max=100"`
	Username        *string `json:"username" validate:"omitempty,min=1,max=50"`
	Bio             *string `json:"bio"`
	PreferredThemes *string `json:"preferred_themes"`
	PortfolioLinks  *string `json:"portfolio_links"`
	NextBuild       *string `json:"next_build"`
	Affiliations    *string `json:"affiliations"`
}

func (r ProfileUpdateRequest) ToDomain() models.ProfileUpdate {
	return models.ProfileUpdate{
		FullName:        r.FullName,
		Username:        r.Username,
		Bio:             r.Bio,
		PreferredThemes: r.PreferredThemes,
		PortfolioLinks:  r.PortfolioLinks,
		NextBuild:       r.NextBuild,
		Affiliations:    r.Affiliations,
	}
}
