package dtos

import "github.com/google/uuid"

type CreatePropertyRequest struct {
	Name         string `json:"name" validate:"required"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	ManagerEmail string `json:"manager_email" validate:"omitempty,email"`
}

type CreatePropertyResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type CreateUnitRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	UnitName   string    `json:"unit_name" validate:"required"`
	UnitNumber string    `json:"unit_number"`
	RentAmount string    `json:"rent_amount" validate:"omitempty,numeric"`
}

type CreateUnitResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type CreateLeaseRequest struct {
	UnitID        uuid.UUID  `json:"unit_id" validate:"required"`
	TenantID      uuid.UUID  `json:"tenant_id" validate:"required"`
	StartDate     string     `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string     `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	RentAmount    string     `json:"rent_amount" validate:"omitempty,numeric"`
	RentProductID *uuid.UUID `json:"rent_product_id"`
}

type CreateLeaseResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

type UpdateLeaseDatesRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type GenerateInvoiceResponse struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
}

type AssignMaintenanceRequest struct {
	AssignedToID uuid.UUID `json:"assigned_to_id" validate:"required"`
}

type RelinkMaintenanceRequest struct {
	TenantID uuid.UUID `json:"tenant_id" validate:"required"`
	UnitID   uuid.UUID `json:"unit_id" validate:"required"`
}

type PropertyDTO struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Street       string    `json:"street"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zip          string    `json:"zip"`
	ManagerEmail string    `json:"manager_email,omitempty"`
}

type ListPropertiesResponse struct {
	Properties []PropertyDTO `json:"properties"`
}
