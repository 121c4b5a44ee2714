package dtos

import (
	"time"

	"github.com/google/uuid"
)

// Pager mirrors the portal pager: step-sized pages with a total count.
type Pager struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

type HomeResponse struct {
	LeaseCount       int `json:"lease_count"`
	MaintenanceCount int `json:"maintenance_count"`
}

type LeaseDTO struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	UnitID          uuid.UUID `json:"unit_id"`
	PropertyID      uuid.UUID `json:"property_id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date,omitempty"`
	RentAmount      string    `json:"rent_amount"`
	State           string    `json:"state"`
	NextInvoiceDate string    `json:"next_invoice_date,omitempty"`
	LastInvoiceDate string    `json:"last_invoice_date,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListLeasesResponse struct {
	Leases []LeaseDTO `json:"leases"`
	Pager  Pager      `json:"pager"`
}

type InvoiceDTO struct {
	ID           uuid.UUID `json:"id"`
	Number       string    `json:"number"`
	InvoiceDate  string    `json:"invoice_date"`
	DueDate      string    `json:"due_date"`
	AmountTotal  string    `json:"amount_total"`
	Status       string    `json:"status"`
	PaymentState string    `json:"payment_state"`
}

type LeaseDetailResponse struct {
	Lease    LeaseDTO     `json:"lease"`
	Invoices []InvoiceDTO `json:"invoices"`
}

type MaintenanceRequestDTO struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	UnitID        uuid.UUID  `json:"unit_id"`
	LeaseID       *uuid.UUID `json:"lease_id,omitempty"`
	RequestDate   string     `json:"request_date"`
	IssueType     string     `json:"issue_type"`
	Description   string     `json:"description"`
	PhotoFilename string     `json:"photo_filename,omitempty"`
	State         string     `json:"state"`
}

type ListMaintenanceResponse struct {
	Requests []MaintenanceRequestDTO `json:"requests"`
	Pager    Pager                   `json:"pager"`
}

type UnitDTO struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	UnitName   string    `json:"unit_name"`
	UnitNumber string    `json:"unit_number"`
	RentAmount string    `json:"rent_amount"`
	Status     string    `json:"status"`
}

type MaintenanceNewResponse struct {
	Units []UnitDTO `json:"units"`
}
