package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusPosted InvoiceStatus = "posted"
)

type PaymentState string

const (
	PaymentStateNotPaid PaymentState = "not_paid"
	PaymentStatePaid    PaymentState = "paid"
)

// InvoiceLine is a single billed line. Rent invoices carry exactly one.
type InvoiceLine struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	ProductID uuid.UUID       `json:"product_id"`
	LineName  string          `json:"line_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	PriceUnit decimal.Decimal `json:"price_unit"`
}

// Invoice is the rent-aware view of a customer invoice. LeaseID/UnitID tag
// invoices produced by the rent scheduler; the three SMS flags are one-shot
// and never cleared once set.
type Invoice struct {
	Versioned
	ID       uuid.UUID `json:"id"`
	Number   string    `json:"number"`
	TenantID uuid.UUID `json:"tenant_id"`

	LeaseID *uuid.UUID `json:"lease_id,omitempty"`
	UnitID  *uuid.UUID `json:"unit_id,omitempty"`

	InvoiceDate time.Time       `json:"invoice_date"`
	DueDate     time.Time       `json:"due_date"`
	Origin      string          `json:"origin"`
	AmountTotal decimal.Decimal `json:"amount_total"`

	Status       InvoiceStatus `json:"status"`
	PaymentState PaymentState  `json:"payment_state"`

	// Portal access token, minted lazily. Empty means not yet minted.
	AccessToken string `json:"-"`

	RentSMSDueSent     bool `json:"rent_sms_due_sent"`
	RentSMSOverdueSent bool `json:"rent_sms_overdue_sent"`
	RentSMSPaidSent    bool `json:"rent_sms_paid_sent"`

	Lines []InvoiceLine `json:"lines,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (i *Invoice) GetID() string { return i.ID.String() }
