package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims structure for custom claims in JWT
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Secret Keys for JWT signing and validation
var (
	AccessSecret  = []byte("secure_secret_key")
	RefreshSecret = []byte("secure_refresh_key")

	AccessExpiration  = 60 * time.Minute
	RefreshExpiration = 24 * time.Hour
)

// GenerateAccessJWT generates a short lived access token
func GenerateAccessJWT(userID, sessionID, issuer string) (string, error) {
	return generate(userID, sessionID, issuer, AccessSecret, AccessExpiration)
}

// GenerateRefreshJWT generates a refresh token
func GenerateRefreshJWT(userID, sessionID, issuer string) (string, error) {
	return generate(userID, sessionID, issuer, RefreshSecret, RefreshExpiration)
}

func generate(userID, sessionID, issuer string, secret []byte, expiration time.Duration) (string, error) {
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessJWT parses an access token and extracts the Claims
func ParseAccessJWT(tokenStr string) (*Claims, error) {
	return parse(tokenStr, AccessSecret)
}

// ParseRefreshJWT parses a refresh token and extracts the Claims
func ParseRefreshJWT(tokenStr string) (*Claims, error) {
	return parse(tokenStr, RefreshSecret)
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Check if the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// CheckJWTNotExpire check JWT token not expires
func CheckJWTNotExpire(t string) (bool, error) {
	if len(t) < 7 || t[:7] != "Bearer " {
		return true, errors.New("Invalid or missing token")
	}

	claims, err := ParseAccessJWT(t[7:])
	if err != nil {
		return true, err
	}

	tokenExpire, err := claims.GetExpirationTime()
	if err != nil {
		return true, nil
	}

	return tokenExpire.After(time.Now()), nil
}
