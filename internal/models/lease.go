package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LeaseState string

const (
	LeaseStateDraft  LeaseState = "draft"
	LeaseStateActive LeaseState = "active"
	LeaseStateEnded  LeaseState = "ended"
)

type BillingCycle string

const BillingCycleMonthly BillingCycle = "monthly"

// Lease assigns a tenant to a unit for a date range and carries the
// monthly-billing cursor pair. NextInvoiceDate only ever advances; the
// generation job is the sole writer of the cursor.
type Lease struct {
	Versioned
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	UnitID     uuid.UUID `json:"unit_id"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`

	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	RentAmount   decimal.Decimal `json:"rent_amount"`
	BillingCycle BillingCycle    `json:"billing_cycle"`

	// Product billed on generated rent invoices. A lease without one cannot
	// be invoiced and yields a configuration error.
	RentProductID *uuid.UUID `json:"rent_product_id,omitempty"`

	NextInvoiceDate *time.Time `json:"next_invoice_date,omitempty"`
	LastInvoiceDate *time.Time `json:"last_invoice_date,omitempty"`

	State LeaseState `json:"state"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (l *Lease) GetID() string { return l.ID.String() }

// CurrentOn reports whether the lease occupies its unit on the given date:
// active, started, and not yet past its end date (an unset end date means
// open-ended).
func (l *Lease) CurrentOn(today time.Time) bool {
	if l.State != LeaseStateActive {
		return false
	}
	if l.StartDate.After(today) {
		return false
	}
	if l.EndDate != nil && l.EndDate.Before(today) {
		return false
	}
	return true
}
