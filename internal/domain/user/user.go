package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserInput struct {
	Email        string
	PasswordHash string
	IsAdmin      bool
}

type UpdateUserInput struct {
	Email        *string
	PasswordHash *string
	IsAdmin      *bool
	IsActive     *bool
}

// Identity is the authenticated principal attached to every scoped
// operation. A nil *Identity means the caller is anonymous.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Owns reports whether the identity may act on a resource owned by ownerID.
// Admins may act on anything.
func (i *Identity) Owns(ownerID uuid.UUID) bool {
	if i == nil {
		return false
	}
	return i.IsAdmin || i.UserID == ownerID
}
