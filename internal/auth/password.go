package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps login timing flat when the email is unknown.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZoVq4F6X5bY9sG3hZ1W3Eu")

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf(msgPasswordEmpty)
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf(msgHashPasswordFmt, err)
	}

	return string(bytes), nil
}

// Verify checks if the password matches the hash. An empty hash burns a comparison anyway.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
