package models

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceState string

const (
	MaintenanceStateNew        MaintenanceState = "new"
	MaintenanceStateInProgress MaintenanceState = "in_progress"
	MaintenanceStateDone       MaintenanceState = "done"
)

type IssueType string

const (
	IssuePlumbing   IssueType = "plumbing"
	IssueElectrical IssueType = "electrical"
	IssueHVAC       IssueType = "hvac"
	IssueAppliance  IssueType = "appliance"
	IssueStructural IssueType = "structural"
	IssueOther      IssueType = "other"
)

// MaintenanceRequest is a tenant-submitted repair ticket. LeaseID is derived
// from the tenant's currently-active lease on the unit at link time.
type MaintenanceRequest struct {
	Versioned
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	UnitID     uuid.UUID  `json:"unit_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	LeaseID    *uuid.UUID `json:"lease_id,omitempty"`

	RequestDate time.Time `json:"request_date"`
	IssueType   IssueType `json:"issue_type"`
	Description string    `json:"description"`

	Photo         []byte `json:"-"`
	PhotoFilename string `json:"photo_filename,omitempty"`

	State        MaintenanceState `json:"state"`
	AssignedToID *uuid.UUID       `json:"assigned_to_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (m *MaintenanceRequest) GetID() string { return m.ID.String() }
