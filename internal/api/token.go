package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrTokenExpired = errors.New("bearer token expired")

// TokenInfo is the subset of bearer-token claims the client cares about.
// The token is decoded without signature verification: only the backend holds
// the secret, and the client just needs identity hints and the expiry.
type TokenInfo struct {
	UserID    string
	Name      string
	Role      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken decodes claims from a bearer token. It returns ErrTokenExpired
// when the token is structurally fine but past its expiry, so callers can
// fail fast instead of collecting a 401 on the first request.
func ParseToken(token string) (TokenInfo, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, err
	}

	info := TokenInfo{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   claims.Role,
	}
	if claims.ID != "" && info.UserID == "" {
		info.UserID = claims.ID
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if time.Now().After(info.ExpiresAt) {
			return info, ErrTokenExpired
		}
	}

	return info, nil
}
