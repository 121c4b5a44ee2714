package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// PaymentService resolves whether a caller may open a payment flow for an
// invoice, minting portal access tokens on the fly for authenticated readers.
// Payment capture itself belongs to an external provider; the SMS paid hook
// fires from MarkInvoicePaid.
type PaymentService struct {
	invoiceRepo repositories.InvoiceRepository
	rentSMS     *RentSMSService
	appURL      string
}

func NewPaymentService(invoiceRepo repositories.InvoiceRepository, rentSMS *RentSMSService, appURL string) *PaymentService {
	return &PaymentService{invoiceRepo: invoiceRepo, rentSMS: rentSMS, appURL: appURL}
}

// ResolveInvoiceAccess checks the caller against the invoice and returns the
// effective access token.
//
//   - With a token: it must match. A bad token yields ErrInvalidAccess — the
//     same error as no access at all, so callers cannot probe for existence.
//   - Without a token: anonymous callers are rejected; an authenticated
//     caller with read access to the invoice gets a token minted on the fly.
func (s *PaymentService) ResolveInvoiceAccess(ctx context.Context, invoiceID uuid.UUID, token string, actor *Actor) (*models.Invoice, string, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}

	if token != "" {
		if inv == nil || inv.AccessToken == "" ||
			subtle.ConstantTimeCompare([]byte(inv.AccessToken), []byte(token)) != 1 {
			return nil, "", utils.ErrInvalidAccess
		}
		return inv, token, nil
	}

	if actor == nil {
		return nil, "", utils.ErrInvalidAccess
	}
	if inv == nil {
		return nil, "", utils.ErrNotFound
	}
	if !actor.Internal && inv.TenantID != actor.TenantID {
		return nil, "", utils.ErrInvalidAccess
	}
	minted, err := s.EnsureAccessToken(ctx, inv)
	if err != nil {
		return nil, "", err
	}
	return inv, minted, nil
}

// EnsureAccessToken returns the invoice's portal token, minting one if it
// has never been issued. Minting is exactly-once under the row version.
func (s *PaymentService) EnsureAccessToken(ctx context.Context, inv *models.Invoice) (string, error) {
	if inv.AccessToken != "" {
		return inv.AccessToken, nil
	}
	err := s.invoiceRepo.UpdateWithRetry(ctx, inv.ID, func(i *models.Invoice) error {
		if i.AccessToken == "" {
			i.AccessToken = uuid.NewString()
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	fresh, err := s.invoiceRepo.GetByID(ctx, inv.ID)
	if err != nil {
		return "", err
	}
	if fresh == nil {
		return "", utils.ErrNotFound
	}
	inv.AccessToken = fresh.AccessToken
	return fresh.AccessToken, nil
}

// InvoicePortalURL always carries the access token query parameter.
func (s *PaymentService) InvoicePortalURL(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if inv == nil {
		return "", utils.ErrNotFound
	}
	token, err := s.EnsureAccessToken(ctx, inv)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/my/invoices/%s?access_token=%s", s.appURL, inv.ID, token), nil
}

// MarkInvoicePaid records the payment-state transition and fires the paid
// SMS hook synchronously, as on any other write that flips the state.
func (s *PaymentService) MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	err := s.invoiceRepo.UpdateWithRetry(ctx, invoiceID, func(i *models.Invoice) error {
		i.PaymentState = models.PaymentStatePaid
		return nil
	})
	if err != nil {
		return nil, mapNoRows(err)
	}
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, utils.ErrNotFound
	}
	if s.rentSMS != nil {
		if err := s.rentSMS.HandlePaymentStateChange(ctx, inv); err != nil {
			utils.Logger.WithError(err).Warnf("Paid SMS hook failed for invoice %s", inv.Number)
		}
	}
	return inv, nil
}
