package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the party that signs leases, receives rent SMS and uses the
// tenant portal.
type Tenant struct {
	Versioned
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	PhoneNumber string     `json:"phone_number"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (t *Tenant) GetID() string { return t.ID.String() }
