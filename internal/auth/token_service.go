package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the fixed validity window for issued tokens.
const DefaultAccessTokenTTL = time.Hour

// ErrInvalidToken is the only verification failure surfaced to callers.
// Expired, tampered and malformed tokens are indistinguishable on purpose,
// so probing clients learn nothing about how close a token was to valid.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenConfig bundles the configuration required to build a TokenService.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Clock  func() time.Time
}

// Claims represents the payload embedded in issued tokens. The email is the
// identity key; role is deliberately absent because it is resolved live on
// every authorization check, never trusted from the token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenInput holds the parameters used when issuing a new token.
type TokenInput struct {
	Email string
	Name  string
}

// TokenService issues and verifies stateless bearer tokens. The server keeps
// no record of outstanding tokens; a token dies at expiry and not before.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. A missing secret is a fatal
// configuration error, not something to degrade around.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret must be provided")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue signs a token for the given identity with the configured TTL.
func (s *TokenService) Issue(input TokenInput) (string, error) {
	if input.Email == "" {
		return "", errors.New("auth: email is required")
	}

	now := s.now()
	claims := &Claims{
		Email: input.Email,
		Name:  input.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.Email,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a signed token, returning its claims. Every
// failure collapses into ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}

	if claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
