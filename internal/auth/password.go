package auth

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a configured cost
type Hasher struct {
	cost int
}

// NewHasher creates a password hasher
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a bcrypt hash from a plaintext password
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(b), err
}

// Verify reports whether the plaintext matches the stored hash
func (h *Hasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
