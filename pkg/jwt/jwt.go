package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Claims carried by a session token.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens.
//
// The signed string doubles as the account's active session token: every
// login produces a fresh token, and only the most recently issued one is
// accepted by the session guard.
type Manager struct {
	secret string
	ttl    time.Duration
}

// NewManager creates a token manager. ttl bounds how long a session can
// live even if it is never superseded by a newer login.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl}
}

// GenerateSessionToken issues a signed token for the account.
// Tokens are unique per login: IssuedAt plus a fresh jti guarantee two
// logins never produce the same string.
func (m *Manager) GenerateSessionToken(accountID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newTokenID(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

func newTokenID() string {
	return xid.New().String()
}

// ValidateToken verifies the signature and expiry and returns the claims.
// Signature validity alone does not make a session current; the session
// guard still compares the raw string against the account's active token.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
