package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	Versioned
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	ManagerEmail string     `json:"manager_email"`
	PropertyName string     `json:"property_name"`
	Street       string     `json:"street"`
	Street2      string     `json:"street2"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	ZipCode      string     `json:"zip_code"`
	Country      string     `json:"country"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func (p *Property) GetID() string { return p.ID.String() }

// DisplayName prefixes the sequential code when one has been assigned.
func (p *Property) DisplayName() string {
	if p.Code != "" && p.PropertyName != "" {
		return p.Code + " - " + p.PropertyName
	}
	if p.Code != "" {
		return p.Code
	}
	return p.PropertyName
}
