package models

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	BearerTokenType = "bearer"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenMeta struct {
	ID        string `json:"jti"`
	Subject   string `json:"sub"`
	Type      string `json:"type"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}
