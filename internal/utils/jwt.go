// Package utils provides helper functions for token creation, password
// hashing and display formatting.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleStaff is the role claim carried by staff access tokens. The
// staff panel is the only authenticated surface, so it is the only
// role the system knows about.
const RoleStaff = "STAFF"

// AccessToken represents a signed JWT access token along with its
// expiry. Staff tokens are short-lived; there is no refresh flow —
// staff simply log in again when the token lapses.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewStaffToken builds and signs an HS256 JWT for a staff user. The
// JWT includes standard claims: subject (sub), role, expiration (exp)
// and issued at (iat).
func NewStaffToken(secret string, staffID uint64, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  staffID,
		"role": RoleStaff,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
