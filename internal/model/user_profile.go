package model

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the application-side profile of an identity. Its ID equals
// the identity provider's user id.
type UserProfile struct {
	ID        uuid.UUID
	FullName  string
	Phone     string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
