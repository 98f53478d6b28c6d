package request

// LoginRequest accepts both a JSON body {"email","password"} and the OAuth2
// password form, where the email travels in the "username" field.
type LoginRequest struct {
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"omitempty,max=50"`
}

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	ArchetypeID int64  `json:"archetype_id" validate:"required,gt=0"`
	TierID      int64  `json:"tier_id" validate:"required,gt=0"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}
