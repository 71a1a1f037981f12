// Package auth issues and verifies operator sessions.
//
// An Operator value is the capability every moderation and catalog write
// requires. Outside tests it is only produced by TokenIssuer.Verify or
// after a successful password check.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"sangrachna/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced when operator passwords are set.
const MinPasswordLength = 10

// ErrNoOperator is returned when an operation is attempted without a capability.
var ErrNoOperator = errors.New("operator capability required")

// Operator identifies an authenticated club operator.
type Operator struct {
	id       uuid.UUID
	username string
}

// FromModel grants the capability for a stored, active operator account.
func FromModel(op *models.Operator) (Operator, error) {
	if op == nil || op.ID == uuid.Nil || !op.Active {
		return Operator{}, ErrNoOperator
	}
	return Operator{id: op.ID, username: op.Username}, nil
}

func (o Operator) ID() uuid.UUID    { return o.id }
func (o Operator) Username() string { return o.username }
func (o Operator) String() string   { return o.username }

// Valid reports whether o was granted for a real account.
func (o Operator) Valid() bool { return o.id != uuid.Nil && o.username != "" }

// Require returns ErrNoOperator unless op is a real capability.
func Require(op Operator) error {
	if !op.Valid() {
		return ErrNoOperator
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
