package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a token without verifying it.
// It is for display only and never used to decide whether a session is valid.
type TokenInfo struct {
	// Format is "jwt" or "opaque".
	Format    string
	Subject   string
	ExpiresAt time.Time
}

// HasExpiry reports whether the token carried an exp claim.
func (i TokenInfo) HasExpiry() bool {
	return !i.ExpiresAt.IsZero()
}

// Expired reports whether the exp claim lies before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.HasExpiry() && now.After(i.ExpiresAt)
}

// Inspect reads the registered claims of a JWT without checking its
// signature. Anything that does not parse as a JWT is reported as opaque.
func Inspect(token string) TokenInfo {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{Format: "opaque"}
	}

	info := TokenInfo{Format: "jwt", Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}
