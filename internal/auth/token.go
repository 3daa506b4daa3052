package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default leeway for token validation.
const DefaultLeeway = 30 * time.Second

// ErrInvalidToken is returned when token validation fails.
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned when the token has expired.
var ErrExpiredToken = errors.New("token has expired")

// ErrEmptySessionID is returned when sessionID is empty.
var ErrEmptySessionID = errors.New("sessionID cannot be empty")

// Claims are the JWT claims carried by the session cookie. The subject is
// the server-side session ID; the cookie never carries the user identity
// directly, so revoking the session in the store invalidates the cookie.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs and validates session cookie tokens.
// Supports dual-key rotation: tokens are signed with currentSecret,
// but can be validated with either currentSecret or previousSecret.
type TokenService struct {
	currentSecret  []byte
	previousSecret []byte
	ttl            time.Duration
	leeway         time.Duration
}

// NewTokenService creates a TokenService signing with a single secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		currentSecret: []byte(secret),
		ttl:           ttl,
		leeway:        DefaultLeeway,
	}
}

// NewTokenServiceWithRotation creates a TokenService with dual-key support for
// zero-downtime secret rotation. Set previousSecret to empty string if no
// rotation is in progress.
func NewTokenServiceWithRotation(currentSecret, previousSecret string, ttl time.Duration) *TokenService {
	svc := &TokenService{
		currentSecret: []byte(currentSecret),
		ttl:           ttl,
		leeway:        DefaultLeeway,
	}
	if previousSecret != "" {
		svc.previousSecret = []byte(previousSecret)
	}
	return svc
}

// Generate creates a signed token whose subject is the session ID.
// The token expiry matches the server-side session TTL.
func (s *TokenService) Generate(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrEmptySessionID
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.currentSecret)
}

// Validate parses and validates a token, returning the session ID if valid.
// Tries currentSecret first, then previousSecret if a rotation is in progress.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, s.currentSecret)
	if err == nil {
		return claims.Subject, nil
	}

	if s.previousSecret != nil {
		if claims, prevErr := s.parse(tokenString, s.previousSecret); prevErr == nil {
			return claims.Subject, nil
		}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", ErrExpiredToken
	}
	return "", ErrInvalidToken
}

func (s *TokenService) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithLeeway(s.leeway))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
