package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of the access token without verifying its
// signature. ok is false when there is no token, it is not a JWT, or it has no exp.
func (s *Session) TokenExpiry() (exp time.Time, ok bool) {
	return tokenExpiry(s.AccessToken())
}

// TokenExpired reports whether the access token carries an exp claim that is
// not after now. Opaque tokens are never considered expired.
func (s *Session) TokenExpired(now time.Time) bool {
	exp, ok := s.TokenExpiry()
	return ok && !exp.After(now)
}

func tokenExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
