package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the access token claims.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse is the body of a successful register or login.
type AuthResponse struct {
	User    *User     `json:"user"`
	Profile *Profile  `json:"profile"`
	Tokens  TokenPair `json:"tokens"`
}
