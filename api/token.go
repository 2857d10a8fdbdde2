package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes: dashboards hold a 24h access token and a 7d refresh
// token, both HS256-signed with the shared JWT secret.
const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// GenerateTokens signs an access/refresh token pair carrying the given
// identity claims for a municipal or state official
func GenerateTokens(secret []byte, identity map[string]interface{}) (accessToken string, refreshToken string, err error) {
	accessToken, err = signToken(secret, identity, AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = signToken(secret, identity, RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func signToken(secret []byte, identity map[string]interface{}, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range identity {
		claims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates signature and expiry and returns the decoded
// claims. Expired tokens surface as jwt.ErrTokenExpired so callers can
// tell "log in again" apart from a forged or malformed token.
func ParseToken(secret []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
