package links

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const maxKeyBytes = 72

// KeyHasher hashes and verifies control keys.
type KeyHasher interface {
	Hash(key string) (string, error)
	Verify(hash, key string) (bool, error)
}

// BcryptHasher stores control keys as bcrypt hashes.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash control key: %w", err)
	}

	return string(hash), nil
}

func (h *BcryptHasher) Verify(hash, key string) (bool, error) {
	// bcrypt only reads the first 72 bytes; longer keys were never issued.
	if len(key) > maxKeyBytes {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("verify control key: %w", err)
}
