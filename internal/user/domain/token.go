package domain

// TokenPair is what a successful login returns: a short-lived access token
// and a longer-lived refresh token. Both are self-contained JWTs; no
// server-side linkage between them is kept.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // access token lifetime, seconds
}
