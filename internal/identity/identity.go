// Package identity supplies the signed-in user to the dashboard. The
// identity provider itself is external; this package only exposes
// "current user id, or none" plus the raw session token to forward.
package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Header carries the user id on every API request.
const Header = "X-User-Id"

type Provider interface {
	// UserID returns the signed-in user id, or false when nobody is signed in.
	UserID() (string, bool)
	// Token returns the session token to forward as a bearer credential, or "".
	Token() string
}

// Static is a fixed identity. The zero value means signed out.
type Static struct {
	ID string
}

func (s Static) UserID() (string, bool) {
	return s.ID, s.ID != ""
}

func (s Static) Token() string {
	return ""
}

// Anonymous is a provider with nobody signed in.
var Anonymous Provider = Static{}

// Session is an identity backed by a signed session token.
type Session struct {
	token  string
	userID string
}

var ErrInvalidToken = errors.New("invalid session token")

// FromToken verifies an HMAC-signed session token and reads the user id from
// its "sub" claim, falling back to "user_id".
func FromToken(token, secret string) (*Session, error) {
	userID, err := ParseToken(token, secret)
	if err != nil {
		return nil, err
	}
	return &Session{token: token, userID: userID}, nil
}

// NewSession forwards a token the backend verifies. userID is taken as is.
func NewSession(userID, token string) *Session {
	return &Session{token: token, userID: userID}
}

func (s *Session) UserID() (string, bool) {
	if s == nil || s.userID == "" {
		return "", false
	}
	return s.userID, true
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// ParseToken validates signature and expiry and returns the subject.
func ParseToken(tokenString, secret string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
}
