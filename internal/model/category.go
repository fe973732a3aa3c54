package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. Slug is unique.
type Category struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

func (c *Category) InitMeta() {
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
}
