package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. A session token grants API access; an MFA token only
// permits completing the second login step.
const (
	// ScopeSession marks a fully authenticated session token.
	ScopeSession = "session"
	// ScopeMFA marks a short-lived token pending second-factor verification.
	ScopeMFA = "mfa"
)

// MFATokenExpiry bounds how long a pending MFA login may take.
const MFATokenExpiry = 5 * time.Minute

// Claims are the JWT claims carried by portal tokens.
type Claims struct {
	UserID uint64 `json:"uid"`
	Email  string `json:"email"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

// ErrInvalidToken indicates a token that failed parsing or validation.
var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs a token for the user with the given scope and lifetime.
func IssueToken(secret string, expiry time.Duration, userID uint64, email, scope string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token string and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
