// Package passwords wraps the one-way password digest service.
// Digests are bcrypt, which folds salt generation into the cost
// parameter, so callers never see a salt.
package passwords

import (
	"golang.org/x/crypto/bcrypt"
)

type Hasher interface {
	Hash(secret string) (string, error)
	Compare(secret string, digest string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Compare(secret string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
