package dtos

import "github.com/google/uuid"

type InvoiceTransactionResponse struct {
	InvoiceID    uuid.UUID `json:"invoice_id"`
	Number       string    `json:"number"`
	AmountTotal  string    `json:"amount_total"`
	PaymentState string    `json:"payment_state"`
	AccessToken  string    `json:"access_token"`
	PortalURL    string    `json:"portal_url"`
}
