// Package jwttoken issues and validates the bearer tokens that carry a
// wallet address through the HTTP layer.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
)

// Claims are the registered claims plus the wallet address the token
// represents.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken mints an HS256 token for an address.
func (s *Service) GenerateAccessToken(addr id.Address, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address: string(addr),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(addr),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken checks signature, expiry, and the embedded address, and
// returns the caller's canonical address.
func (s *Service) ValidateToken(tokenString string) (id.Address, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return id.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return id.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return id.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	addr, err := id.ParseAddress(claims.Address)
	if err != nil {
		return id.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "token carries a malformed address")
	}
	return addr, nil
}
