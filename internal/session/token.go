package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client can read from a bearer token without the
// signing key. None of it is trusted: the backend remains the authority.
type TokenInfo struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its signature.
// Opaque tokens yield an error.
func InspectToken(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("inspect token: %w", err)
	}

	var info TokenInfo
	info.Subject, _ = claims.GetSubject()
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// inspect returns the claims of token, or zero claims for an opaque token.
func inspect(token string) TokenInfo {
	info, err := InspectToken(token)
	if err != nil {
		slog.Debug("token carries no readable claims", "error", err)
		return TokenInfo{}
	}
	return info
}
