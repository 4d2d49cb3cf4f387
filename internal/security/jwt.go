package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the PMS access token we look at.
// The token is issued and verified by the PMS; we only read it.
type Claims struct {
	HotelID int    `json:"hotel_id,omitempty"`
	Subject string `json:"sub,omitempty"`
	jwt.RegisteredClaims
}

var ErrNotJWT = errors.New("access token is not a JWT")

// InspectAccessToken decodes the claims without verifying the signature.
func InspectAccessToken(accessToken string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	return claims, nil
}

// AccessTokenExpiry returns the exp claim of the token, if it has one.
func AccessTokenExpiry(accessToken string) (time.Time, bool) {
	claims, err := InspectAccessToken(accessToken)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// SignAccessToken issues an HS512 token. Used by local tooling and tests that
// stand in for the PMS.
func SignAccessToken(secret []byte, hotelID int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		HotelID: hotelID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "ibe-pms",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return token, nil
}
