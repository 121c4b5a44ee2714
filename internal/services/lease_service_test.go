package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/utils"
)

type leaseFixture struct {
	leases *fakeLeaseRepo
	units  *fakeUnitRepo
	svc    *LeaseService

	unit *models.Unit
}

func newLeaseFixture(t *testing.T, now time.Time) *leaseFixture {
	leases := newFakeLeaseRepo()
	units := newFakeUnitRepo(leases)
	occupancy := NewOccupancyService(units, leases)
	occupancy.now = func() time.Time { return now }
	svc := NewLeaseService(leases, units, newFakeSequenceRepo(), occupancy)

	unit := &models.Unit{
		ID:         uuid.New(),
		Code:       "UNIT/00001",
		PropertyID: uuid.New(),
		UnitName:   "Garden Flat",
		UnitNumber: "101",
		RentAmount: decimal.NewFromInt(1250),
		Status:     models.UnitStatusVacant,
	}
	require.NoError(t, units.Create(context.Background(), unit))
	return &leaseFixture{leases: leases, units: units, svc: svc, unit: unit}
}

func TestCreateLeaseDefaults(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t, testDate(2024, time.March, 15))

	lease, err := f.svc.CreateLease(ctx, CreateLeaseParams{
		UnitID:    f.unit.ID,
		TenantID:  uuid.New(),
		StartDate: testDate(2024, time.April, 1),
	})
	require.NoError(t, err)
	require.Equal(t, "LEASE/00001", lease.Code)
	require.Equal(t, models.LeaseStateDraft, lease.State)
	require.Equal(t, f.unit.PropertyID, lease.PropertyID)
	require.Equal(t, models.BillingCycleMonthly, lease.BillingCycle)

	// Rent defaults from the unit when the caller leaves it out.
	require.True(t, lease.RentAmount.Equal(decimal.NewFromInt(1250)))

	// The billing cursor starts at the lease start.
	require.NotNil(t, lease.NextInvoiceDate)
	require.True(t, lease.NextInvoiceDate.Equal(testDate(2024, time.April, 1)))

	// A draft lease does not occupy the unit.
	unit, err := f.units.GetByID(ctx, f.unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusVacant, unit.Status)
}

func TestCreateLeaseKeepsExplicitRent(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t, testDate(2024, time.March, 15))

	lease, err := f.svc.CreateLease(ctx, CreateLeaseParams{
		UnitID:     f.unit.ID,
		TenantID:   uuid.New(),
		StartDate:  testDate(2024, time.April, 1),
		RentAmount: decimal.NewFromInt(1400),
	})
	require.NoError(t, err)
	require.True(t, lease.RentAmount.Equal(decimal.NewFromInt(1400)))
}

func TestCreateLeaseUnknownUnit(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t, testDate(2024, time.March, 15))

	_, err := f.svc.CreateLease(ctx, CreateLeaseParams{
		UnitID:    uuid.New(),
		TenantID:  uuid.New(),
		StartDate: testDate(2024, time.April, 1),
	})
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestActivateAndEndRecomputeOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t, testDate(2024, time.April, 15))

	tenantID := uuid.New()
	lease, err := f.svc.CreateLease(ctx, CreateLeaseParams{
		UnitID:    f.unit.ID,
		TenantID:  tenantID,
		StartDate: testDate(2024, time.April, 1),
	})
	require.NoError(t, err)

	activated, err := f.svc.Activate(ctx, lease.ID)
	require.NoError(t, err)
	require.Equal(t, models.LeaseStateActive, activated.State)

	unit, err := f.units.GetByID(ctx, f.unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusOccupied, unit.Status)
	require.NotNil(t, unit.CurrentLeaseID)
	require.Equal(t, lease.ID, *unit.CurrentLeaseID)
	require.NotNil(t, unit.CurrentTenantID)
	require.Equal(t, tenantID, *unit.CurrentTenantID)

	ended, err := f.svc.End(ctx, lease.ID)
	require.NoError(t, err)
	require.Equal(t, models.LeaseStateEnded, ended.State)

	unit, err = f.units.GetByID(ctx, f.unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusVacant, unit.Status)
	require.Nil(t, unit.CurrentLeaseID)
	require.Nil(t, unit.CurrentTenantID)
}

func TestLeaseWritesOnUnknownID(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t, testDate(2024, time.April, 15))

	_, err := f.svc.Activate(ctx, uuid.New())
	require.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.svc.UpdateDates(ctx, uuid.New(), testDate(2024, time.April, 1), nil)
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateDatesMovesOccupancyWindow(t *testing.T) {
	ctx := context.Background()
	f := newLeaseFixture(t, testDate(2024, time.April, 15))

	lease, err := f.svc.CreateLease(ctx, CreateLeaseParams{
		UnitID:    f.unit.ID,
		TenantID:  uuid.New(),
		StartDate: testDate(2024, time.April, 1),
	})
	require.NoError(t, err)
	_, err = f.svc.Activate(ctx, lease.ID)
	require.NoError(t, err)

	// Closing the window in the past vacates the unit.
	updated, err := f.svc.UpdateDates(ctx, lease.ID,
		testDate(2024, time.January, 1), ptrTime(testDate(2024, time.March, 31)))
	require.NoError(t, err)
	require.NotNil(t, updated.EndDate)

	unit, err := f.units.GetByID(ctx, f.unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusVacant, unit.Status)
}
