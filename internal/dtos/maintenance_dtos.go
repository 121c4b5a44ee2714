package dtos

import "github.com/google/uuid"

// SubmitMaintenanceRequest carries the portal "new request" form fields.
// The photo arrives as a separate multipart part and is handled by the
// controller, not the DTO.
type SubmitMaintenanceRequest struct {
	UnitID      uuid.UUID `json:"unit_id" validate:"required"`
	IssueType   string    `json:"issue_type" validate:"omitempty,oneof=plumbing electrical hvac appliance structural other"`
	Description string    `json:"description" validate:"required"`
}

type SubmitMaintenanceResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}
