package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// LeaseService owns the lease lifecycle: creation in draft, explicit
// activate/end transitions, and date changes. Every mutation that can move a
// unit in or out of occupancy triggers a recompute.
type LeaseService struct {
	leaseRepo repositories.LeaseRepository
	unitRepo  repositories.UnitRepository
	seqRepo   repositories.SequenceRepository
	occupancy *OccupancyService
}

func NewLeaseService(
	leaseRepo repositories.LeaseRepository,
	unitRepo repositories.UnitRepository,
	seqRepo repositories.SequenceRepository,
	occupancy *OccupancyService,
) *LeaseService {
	return &LeaseService{
		leaseRepo: leaseRepo,
		unitRepo:  unitRepo,
		seqRepo:   seqRepo,
		occupancy: occupancy,
	}
}

type CreateLeaseParams struct {
	Code          string
	UnitID        uuid.UUID
	TenantID      uuid.UUID
	StartDate     time.Time
	EndDate       *time.Time
	RentAmount    decimal.Decimal
	RentProductID *uuid.UUID
}

func (s *LeaseService) CreateLease(ctx context.Context, p CreateLeaseParams) (*models.Lease, error) {
	unit, err := s.unitRepo.GetByID(ctx, p.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrNotFound
	}

	code, err := nextCodeIfEmpty(ctx, s.seqRepo, p.Code, seqLease, prefixLease)
	if err != nil {
		return nil, err
	}

	rent := p.RentAmount
	if rent.IsZero() {
		// Default the rent from the unit, like picking a unit on the form.
		rent = unit.RentAmount
	}
	start := utils.DateOnly(p.StartDate)
	var end *time.Time
	if p.EndDate != nil {
		end = utils.Ptr(utils.DateOnly(*p.EndDate))
	}

	lease := &models.Lease{
		ID:            uuid.New(),
		Code:          code,
		UnitID:        unit.ID,
		PropertyID:    unit.PropertyID,
		TenantID:      p.TenantID,
		StartDate:     start,
		EndDate:       end,
		RentAmount:    rent,
		BillingCycle:  models.BillingCycleMonthly,
		RentProductID: p.RentProductID,
		// The billing cursor starts at the lease start.
		NextInvoiceDate: utils.Ptr(start),
		State:           models.LeaseStateDraft,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		return nil, err
	}
	if err := s.occupancy.RecomputeUnit(ctx, unit.ID); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to recompute occupancy for unit %s", unit.ID)
	}
	return lease, nil
}

func (s *LeaseService) Activate(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return s.setState(ctx, id, models.LeaseStateActive)
}

func (s *LeaseService) End(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return s.setState(ctx, id, models.LeaseStateEnded)
}

func (s *LeaseService) setState(ctx context.Context, id uuid.UUID, state models.LeaseState) (*models.Lease, error) {
	err := s.leaseRepo.UpdateWithRetry(ctx, id, func(l *models.Lease) error {
		l.State = state
		return nil
	})
	if err != nil {
		return nil, mapNoRows(err)
	}
	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, utils.ErrNotFound
	}
	if err := s.occupancy.RecomputeUnit(ctx, lease.UnitID); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to recompute occupancy for unit %s", lease.UnitID)
	}
	return lease, nil
}

// UpdateDates moves the lease window and re-derives the unit's occupancy.
func (s *LeaseService) UpdateDates(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) (*models.Lease, error) {
	err := s.leaseRepo.UpdateWithRetry(ctx, id, func(l *models.Lease) error {
		l.StartDate = utils.DateOnly(start)
		if end != nil {
			l.EndDate = utils.Ptr(utils.DateOnly(*end))
		} else {
			l.EndDate = nil
		}
		return nil
	})
	if err != nil {
		return nil, mapNoRows(err)
	}
	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, utils.ErrNotFound
	}
	if err := s.occupancy.RecomputeUnit(ctx, lease.UnitID); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to recompute occupancy for unit %s", lease.UnitID)
	}
	return lease, nil
}
