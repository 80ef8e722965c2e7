package model

import (
	"github.com/google/uuid"
)

// Account is the identity record; email is the unique natural key. The
// credential hash is opaque to this layer. Accounts are soft-deleted only.
type Account struct {
	Base
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
}
