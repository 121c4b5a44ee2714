package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// OccupancyService maintains each unit's derived occupancy view
// (status / current lease / current tenant) from its lease set.
type OccupancyService struct {
	unitRepo  repositories.UnitRepository
	leaseRepo repositories.LeaseRepository
	now       func() time.Time
}

func NewOccupancyService(
	unitRepo repositories.UnitRepository,
	leaseRepo repositories.LeaseRepository,
) *OccupancyService {
	return &OccupancyService{
		unitRepo:  unitRepo,
		leaseRepo: leaseRepo,
		now:       time.Now,
	}
}

// ResolveCurrentLease picks the lease occupying the unit on the given date:
// active, started, not past its end date. When several qualify (overlapping
// active leases are bad data, but reads must still resolve) the latest start
// date wins, then the highest code, then the most recent creation.
func ResolveCurrentLease(leases []*models.Lease, today time.Time) *models.Lease {
	var best *models.Lease
	for _, l := range leases {
		if !l.CurrentOn(today) {
			continue
		}
		if best == nil || leaseMoreCurrent(l, best) {
			best = l
		}
	}
	return best
}

func leaseMoreCurrent(a, b *models.Lease) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	if a.Code != b.Code {
		return a.Code > b.Code
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// RecomputeUnit re-derives the unit's occupancy from its leases and persists
// it. Invoked whenever a lease's state, start_date or end_date changes, or
// the unit's lease set changes.
func (s *OccupancyService) RecomputeUnit(ctx context.Context, unitID uuid.UUID) error {
	leases, err := s.leaseRepo.ListByUnitID(ctx, unitID)
	if err != nil {
		return err
	}
	today := utils.DateOnly(s.now().UTC())
	current := ResolveCurrentLease(leases, today)

	return s.unitRepo.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		if current == nil {
			u.Status = models.UnitStatusVacant
			u.CurrentLeaseID = nil
			u.CurrentTenantID = nil
			return nil
		}
		u.Status = models.UnitStatusOccupied
		u.CurrentLeaseID = utils.Ptr(current.ID)
		u.CurrentTenantID = utils.Ptr(current.TenantID)
		return nil
	})
}
