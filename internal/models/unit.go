package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnitStatus string

const (
	UnitStatusVacant   UnitStatus = "vacant"
	UnitStatusOccupied UnitStatus = "occupied"
)

// Unit represents a tenant-addressable space on a property. Status,
// CurrentLeaseID and CurrentTenantID are derived from the unit's leases and
// recomputed whenever a lease's state or date range changes.
type Unit struct {
	Versioned
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	PropertyID uuid.UUID       `json:"property_id"`
	UnitName   string          `json:"unit_name"`
	UnitNumber string          `json:"unit_number"`
	RentAmount decimal.Decimal `json:"rent_amount"`

	Status          UnitStatus `json:"status"`
	CurrentLeaseID  *uuid.UUID `json:"current_lease_id,omitempty"`
	CurrentTenantID *uuid.UUID `json:"current_tenant_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (u *Unit) GetID() string { return u.ID.String() }

func (u *Unit) DisplayName() string {
	if u.Code != "" && u.UnitName != "" {
		return u.Code + " - " + u.UnitName
	}
	if u.Code != "" {
		return u.Code
	}
	return u.UnitName
}
