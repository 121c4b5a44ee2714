package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/services"
	"github.com/poofware/property-service/internal/utils"
	"github.com/shopspring/decimal"
)

// Helper to check for unique violation error (PostgreSQL specific code)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Fixed IDs so re-runs can detect data already present.
var (
	seedTenantID      = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	seedPropertyID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	seedUnitAID       = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	seedUnitBID       = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	seedLeaseActiveID = uuid.MustParse("66666666-6666-6666-6666-666666666666")
	seedLeaseDraftID  = uuid.MustParse("77777777-7777-7777-7777-777777777777")
	seedRentProductID = uuid.MustParse("99999999-9999-9999-9999-999999999999")
)

// SeedTestData loads a demo property with two units, one tenant and two
// leases (one active with a live billing cursor, one draft). Skips itself
// when the sentinel tenant already exists.
func SeedTestData(
	ctx context.Context,
	tenantRepo repositories.TenantRepository,
	propRepo repositories.PropertyRepository,
	unitRepo repositories.UnitRepository,
	leaseRepo repositories.LeaseRepository,
	seqRepo repositories.SequenceRepository,
	occupancy *services.OccupancyService,
) error {
	if existing, err := tenantRepo.GetByID(ctx, seedTenantID); err != nil {
		return fmt.Errorf("check existing seed tenant: %w", err)
	} else if existing != nil {
		utils.Logger.Info("property-service: seed data already present; skipping seeding")
		return nil
	}

	tenant := &models.Tenant{
		ID:          seedTenantID,
		Name:        "Dana Demo",
		PhoneNumber: "+15005550100",
		Email:       "dana.demo@example.com",
	}
	if err := tenantRepo.Create(ctx, tenant); err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("seed tenant: %w", err)
	}

	propCode, err := seqRepo.NextCode(ctx, "property", "PROP")
	if err != nil {
		return fmt.Errorf("seed property code: %w", err)
	}
	prop := &models.Property{
		ID:           seedPropertyID,
		Code:         propCode,
		PropertyName: "Demo Gardens",
		Street:       "12 Demo Street",
		City:         "Springfield",
		State:        "IL",
		ZipCode:      "62701",
		Country:      "US",
		ManagerEmail: "manager@example.com",
	}
	if err := propRepo.Create(ctx, prop); err != nil && !isUniqueViolation(err) {
		return fmt.Errorf("seed property: %w", err)
	}

	units := []*models.Unit{
		{
			ID:         seedUnitAID,
			PropertyID: seedPropertyID,
			UnitName:   "Garden Flat",
			UnitNumber: "101",
			RentAmount: decimal.NewFromInt(1000),
			Status:     models.UnitStatusVacant,
		},
		{
			ID:         seedUnitBID,
			PropertyID: seedPropertyID,
			UnitName:   "Loft",
			UnitNumber: "201",
			RentAmount: decimal.NewFromInt(1250),
			Status:     models.UnitStatusVacant,
		},
	}
	for _, u := range units {
		code, err := seqRepo.NextCode(ctx, "unit", "UNIT")
		if err != nil {
			return fmt.Errorf("seed unit code: %w", err)
		}
		u.Code = code
		if err := unitRepo.Create(ctx, u); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("seed unit %s: %w", u.UnitNumber, err)
		}
	}

	today := utils.DateOnly(time.Now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	leases := []*models.Lease{
		{
			ID:              seedLeaseActiveID,
			UnitID:          seedUnitAID,
			PropertyID:      seedPropertyID,
			TenantID:        seedTenantID,
			StartDate:       monthStart,
			RentAmount:      decimal.NewFromInt(1000),
			BillingCycle:    models.BillingCycleMonthly,
			RentProductID:   utils.Ptr(seedRentProductID),
			NextInvoiceDate: utils.Ptr(monthStart),
			State:           models.LeaseStateActive,
		},
		{
			ID:              seedLeaseDraftID,
			UnitID:          seedUnitBID,
			PropertyID:      seedPropertyID,
			TenantID:        seedTenantID,
			StartDate:       monthStart.AddDate(0, 1, 0),
			RentAmount:      decimal.NewFromInt(1250),
			BillingCycle:    models.BillingCycleMonthly,
			RentProductID:   utils.Ptr(seedRentProductID),
			NextInvoiceDate: utils.Ptr(monthStart.AddDate(0, 1, 0)),
			State:           models.LeaseStateDraft,
		},
	}
	for _, l := range leases {
		code, err := seqRepo.NextCode(ctx, "lease", "LEASE")
		if err != nil {
			return fmt.Errorf("seed lease code: %w", err)
		}
		l.Code = code
		if err := leaseRepo.Create(ctx, l); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("seed lease %s: %w", l.Code, err)
		}
	}

	for _, unitID := range []uuid.UUID{seedUnitAID, seedUnitBID} {
		if err := occupancy.RecomputeUnit(ctx, unitID); err != nil {
			return fmt.Errorf("seed occupancy recompute: %w", err)
		}
	}

	utils.Logger.Info("property-service: demo data seeded")
	return nil
}
