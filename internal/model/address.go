package model

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping address owned by a user.
type Address struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Recipient    string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	PostalCode   string
	IsDefault    bool
	CreatedAt    time.Time
}

func (a *Address) InitMeta() {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
}
