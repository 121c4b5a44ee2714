package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// DefaultReminderLeadDays is how many days before the due date the rent
// reminder goes out, unless overridden by the rent_reminder_lead_days flag.
const DefaultReminderLeadDays = 3

var errSMSAlreadySent = errors.New("rent sms already sent")

// RentSMSService owns the three one-shot rent notifications. Each is guarded
// by its own flag on the invoice: the flag is claimed (compare-and-set via
// row version) before the hand-off to the SMS transport, so re-evaluating a
// trigger can never produce a second message for the same invoice.
type RentSMSService struct {
	invoiceRepo repositories.InvoiceRepository
	unitRepo    repositories.UnitRepository
	tenantRepo  repositories.TenantRepository
	sms         SMSSender
	leadDays    int
	now         func() time.Time
}

func NewRentSMSService(
	invoiceRepo repositories.InvoiceRepository,
	unitRepo repositories.UnitRepository,
	tenantRepo repositories.TenantRepository,
	sms SMSSender,
	leadDays int,
) *RentSMSService {
	if leadDays <= 0 {
		leadDays = DefaultReminderLeadDays
	}
	return &RentSMSService{
		invoiceRepo: invoiceRepo,
		unitRepo:    unitRepo,
		tenantRepo:  tenantRepo,
		sms:         sms,
		leadDays:    leadDays,
		now:         time.Now,
	}
}

// SetNow overrides the clock; tests only.
func (s *RentSMSService) SetNow(now func() time.Time) { s.now = now }

// SendRentReminders is the scheduled scan: due reminders for invoices due in
// exactly leadDays days, overdue notices for invoices past due. Invoices are
// processed independently.
func (s *RentSMSService) SendRentReminders(ctx context.Context) error {
	today := utils.DateOnly(s.now().UTC())
	dueDate := today.AddDate(0, 0, s.leadDays)

	due, err := s.invoiceRepo.ListDueForReminder(ctx, dueDate)
	if err != nil {
		return err
	}
	for _, inv := range due {
		if err := s.notify(ctx, inv, smsKindDue); err != nil {
			utils.Logger.WithError(err).Errorf("Failed rent due reminder for invoice %s", inv.Number)
		}
	}

	overdue, err := s.invoiceRepo.ListOverdueForNotice(ctx, today)
	if err != nil {
		return err
	}
	for _, inv := range overdue {
		if err := s.notify(ctx, inv, smsKindOverdue); err != nil {
			utils.Logger.WithError(err).Errorf("Failed rent overdue notice for invoice %s", inv.Number)
		}
	}
	return nil
}

// HandlePaymentStateChange fires the paid confirmation. It is called from
// every write path that can change an invoice's payment state, not just the
// scheduled scans.
func (s *RentSMSService) HandlePaymentStateChange(ctx context.Context, inv *models.Invoice) error {
	if inv.PaymentState != models.PaymentStatePaid || inv.LeaseID == nil || inv.RentSMSPaidSent {
		return nil
	}
	return s.notify(ctx, inv, smsKindPaid)
}

/* ---------- internals ---------- */

type smsKind int

const (
	smsKindDue smsKind = iota
	smsKindOverdue
	smsKindPaid
)

func (s *RentSMSService) notify(ctx context.Context, inv *models.Invoice, kind smsKind) error {
	// Claim the flag first. If another pass got here before us the mutate
	// reports errSMSAlreadySent and we drop out without sending.
	err := s.invoiceRepo.UpdateWithRetry(ctx, inv.ID, func(i *models.Invoice) error {
		switch kind {
		case smsKindDue:
			if i.RentSMSDueSent {
				return errSMSAlreadySent
			}
			i.RentSMSDueSent = true
		case smsKindOverdue:
			if i.RentSMSOverdueSent {
				return errSMSAlreadySent
			}
			i.RentSMSOverdueSent = true
		case smsKindPaid:
			if i.RentSMSPaidSent {
				return errSMSAlreadySent
			}
			i.RentSMSPaidSent = true
		}
		return nil
	})
	if errors.Is(err, errSMSAlreadySent) {
		return nil
	}
	if err != nil {
		return err
	}

	tenant, body, err := s.buildMessage(ctx, inv, kind)
	if err != nil {
		return err
	}
	if tenant.PhoneNumber == "" {
		utils.Logger.Warnf("Tenant %s has no phone number, skipping rent SMS for invoice %s", tenant.ID, inv.Number)
		return nil
	}
	if err := s.sms.SendSMS(ctx, tenant.PhoneNumber, body); err != nil {
		// The flag stays set: the trigger fired, the transport failed.
		utils.Logger.WithError(err).Warnf("Failed to hand off rent SMS for invoice %s", inv.Number)
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}

func (s *RentSMSService) buildMessage(ctx context.Context, inv *models.Invoice, kind smsKind) (*models.Tenant, string, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, inv.TenantID)
	if err != nil {
		return nil, "", err
	}
	if tenant == nil {
		return nil, "", utils.ErrNotFound
	}

	unitName := "your unit"
	if inv.UnitID != nil {
		if unit, err := s.unitRepo.GetByID(ctx, *inv.UnitID); err == nil && unit != nil {
			unitName = unit.DisplayName()
		}
	}
	dueDate := inv.DueDate.Format("2006-01-02")
	amount := inv.AmountTotal.StringFixed(2)
	ref := inv.Number
	if ref == "" {
		ref = "invoice"
	}

	var body string
	switch kind {
	case smsKindDue:
		body = fmt.Sprintf("Rent reminder: %s is due on %s. Amount: %s. Ref %s.", unitName, dueDate, amount, ref)
	case smsKindOverdue:
		body = fmt.Sprintf("Overdue rent: %s was due on %s. Amount: %s. Ref %s.", unitName, dueDate, amount, ref)
	case smsKindPaid:
		body = fmt.Sprintf("Payment received. Thank you! %s for %s amount %s is paid.", ref, unitName, amount)
	}
	return tenant, body, nil
}
