package pin

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingPIN = errors.New("PIN is required")
	ErrInvalidPIN = errors.New("invalid PIN")
)

// Gate compares a caller supplied PIN against the configured admin secret.
// The secret is either a plaintext value, a bcrypt hash, or both (either matches).
// A Gate with no secret configured rejects every PIN.
type Gate struct {
	plain string
	hash  []byte
}

func NewGate(plain, hash string) *Gate {
	g := &Gate{plain: strings.TrimSpace(plain)}
	if h := strings.TrimSpace(hash); h != "" {
		g.hash = []byte(h)
	}
	return g
}

// Configured reports whether any secret was supplied.
func (g *Gate) Configured() bool {
	return g != nil && (g.plain != "" || len(g.hash) > 0)
}

// Check returns nil when supplied matches the secret.
func (g *Gate) Check(supplied string) error {
	if supplied == "" {
		return ErrMissingPIN
	}
	if !g.Configured() {
		return ErrInvalidPIN
	}
	if g.plain != "" && subtle.ConstantTimeCompare([]byte(supplied), []byte(g.plain)) == 1 {
		return nil
	}
	if len(g.hash) > 0 && bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil {
		return nil
	}
	return ErrInvalidPIN
}

// Hash produces the value for ADMIN_DELETE_PIN_HASH.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
