package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// BillingService generates monthly rent invoices from lease cursors.
//
// Idempotence: generating for a lease advances next_invoice_date past the
// invoice date, so a second run on the same day finds nothing due. The
// cursor never moves backwards.
type BillingService struct {
	leaseRepo   repositories.LeaseRepository
	invoiceRepo repositories.InvoiceRepository
	unitRepo    repositories.UnitRepository
	seqRepo     repositories.SequenceRepository
	now         func() time.Time
}

func NewBillingService(
	leaseRepo repositories.LeaseRepository,
	invoiceRepo repositories.InvoiceRepository,
	unitRepo repositories.UnitRepository,
	seqRepo repositories.SequenceRepository,
) *BillingService {
	return &BillingService{
		leaseRepo:   leaseRepo,
		invoiceRepo: invoiceRepo,
		unitRepo:    unitRepo,
		seqRepo:     seqRepo,
		now:         time.Now,
	}
}

// SetNow overrides the clock; tests only.
func (s *BillingService) SetNow(now func() time.Time) { s.now = now }

// GenerateRentInvoices is the scheduled entry point. Leases are processed
// independently: a failure on one is logged and must not abort the batch.
func (s *BillingService) GenerateRentInvoices(ctx context.Context) error {
	today := utils.DateOnly(s.now().UTC())
	utils.Logger.Infof("Generating rent invoices due on or before %s", today.Format("2006-01-02"))

	leases, err := s.leaseRepo.ListDueForInvoicing(ctx, today)
	if err != nil {
		return err
	}
	for _, lease := range leases {
		if lease.NextInvoiceDate == nil {
			continue
		}
		if _, err := s.generateForLease(ctx, lease, *lease.NextInvoiceDate); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to generate rent invoice for lease %s", lease.Code)
			continue
		}
	}
	return nil
}

// GenerateInvoiceForLease is the interactive variant (manager surface).
// Configuration problems such as a missing rent product are returned to the
// caller instead of being swallowed.
func (s *BillingService) GenerateInvoiceForLease(ctx context.Context, leaseID uuid.UUID, invoiceDate *time.Time) (*models.Invoice, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, utils.ErrNotFound
	}
	if lease.State != models.LeaseStateActive {
		return nil, utils.ErrLeaseNotActive
	}
	date := invoiceDate
	if date == nil {
		date = lease.NextInvoiceDate
	}
	if date == nil {
		return nil, fmt.Errorf("lease %s has no next invoice date", lease.Code)
	}
	return s.generateForLease(ctx, lease, utils.DateOnly(*date))
}

func (s *BillingService) generateForLease(ctx context.Context, lease *models.Lease, invoiceDate time.Time) (*models.Invoice, error) {
	if lease.State != models.LeaseStateActive {
		return nil, utils.ErrLeaseNotActive
	}
	if lease.RentProductID == nil {
		return nil, utils.ErrMissingRentProduct
	}

	unit, err := s.unitRepo.GetByID(ctx, lease.UnitID)
	if err != nil {
		return nil, err
	}
	unitName := "unit"
	var unitID *uuid.UUID
	if unit != nil {
		unitName = unit.DisplayName()
		unitID = utils.Ptr(unit.ID)
	}

	number, err := s.seqRepo.NextCode(ctx, seqInvoice, prefixInvoice)
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		ID:           uuid.New(),
		Number:       number,
		TenantID:     lease.TenantID,
		LeaseID:      utils.Ptr(lease.ID),
		UnitID:       unitID,
		InvoiceDate:  invoiceDate,
		DueDate:      invoiceDate,
		Origin:       lease.Code,
		AmountTotal:  lease.RentAmount,
		Status:       models.InvoiceStatusPosted,
		PaymentState: models.PaymentStateNotPaid,
		Lines: []models.InvoiceLine{{
			ID:        uuid.New(),
			ProductID: *lease.RentProductID,
			LineName:  fmt.Sprintf("Rent for %s (%s)", unitName, invoiceDate.Format("January 2006")),
			Quantity:  decimal.NewFromInt(1),
			PriceUnit: lease.RentAmount,
		}},
		CreatedAt: s.now().UTC(),
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	next := utils.AddMonthsClamped(invoiceDate, 1)
	err = s.leaseRepo.UpdateWithRetry(ctx, lease.ID, func(l *models.Lease) error {
		l.LastInvoiceDate = utils.Ptr(invoiceDate)
		// The cursor only advances; never move it backwards.
		if l.NextInvoiceDate == nil || next.After(*l.NextInvoiceDate) {
			l.NextInvoiceDate = utils.Ptr(next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.Logger.Infof("Generated rent invoice %s for lease %s dated %s", inv.Number, lease.Code, invoiceDate.Format("2006-01-02"))
	return inv, nil
}
