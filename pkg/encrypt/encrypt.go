package encrypt

import (
	crand "crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/nacl/box"
)

const bcryptCost = bcrypt.DefaultCost

// Error definitions
var (
	ErrWeakPassword     = errors.New("password does not meet strength requirements")
	ErrPasswordMismatch = errors.New("password does not match")
)

// ValidatePasswordStrength check the password length
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters long", ErrWeakPassword)
	}
	return nil
}

// HashPassword hash the password with bcrypt
func HashPassword(password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedPassword), nil
}

// CheckPassword check the password match the hash
func CheckPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// KeyPair hold one base64 encoded box key pair
type KeyPair struct {
	Public  string `json:"public"`
	Private string `json:"private"`
}

// GenerateRoomKey make an opaque room key blob
func GenerateRoomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := crand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate room key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateKeyPairs make count box key pairs for a new account
func GenerateKeyPairs(count int) ([]KeyPair, error) {
	pairs := make([]KeyPair, 0, count)
	for i := 0; i < count; i++ {
		pub, priv, err := box.GenerateKey(crand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key pair: %w", err)
		}
		pairs = append(pairs, KeyPair{
			Public:  base64.StdEncoding.EncodeToString(pub[:]),
			Private: base64.StdEncoding.EncodeToString(priv[:]),
		})
	}
	return pairs, nil
}
