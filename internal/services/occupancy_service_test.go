package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/poofware/property-service/internal/models"
)

func activeLease(unitID, tenantID uuid.UUID, code string, start time.Time) *models.Lease {
	return &models.Lease{
		ID:         uuid.New(),
		Code:       code,
		UnitID:     unitID,
		TenantID:   tenantID,
		StartDate:  start,
		RentAmount: decimal.NewFromInt(900),
		State:      models.LeaseStateActive,
	}
}

func TestResolveCurrentLeasePrefersLatestStart(t *testing.T) {
	unitID := uuid.New()
	today := testDate(2024, time.May, 1)

	older := activeLease(unitID, uuid.New(), "LEASE/00001", testDate(2024, time.January, 1))
	newer := activeLease(unitID, uuid.New(), "LEASE/00002", testDate(2024, time.April, 1))

	got := ResolveCurrentLease([]*models.Lease{older, newer}, today)
	require.NotNil(t, got)
	require.Equal(t, newer.ID, got.ID)
}

func TestResolveCurrentLeaseTieBreaksOnCode(t *testing.T) {
	unitID := uuid.New()
	start := testDate(2024, time.April, 1)
	today := testDate(2024, time.May, 1)

	a := activeLease(unitID, uuid.New(), "LEASE/00007", start)
	b := activeLease(unitID, uuid.New(), "LEASE/00009", start)

	got := ResolveCurrentLease([]*models.Lease{a, b}, today)
	require.NotNil(t, got)
	require.Equal(t, b.ID, got.ID, "same start date resolves to the highest code")
}

func TestResolveCurrentLeaseSkipsNonCurrent(t *testing.T) {
	unitID := uuid.New()
	today := testDate(2024, time.May, 1)

	draft := activeLease(unitID, uuid.New(), "LEASE/00001", testDate(2024, time.January, 1))
	draft.State = models.LeaseStateDraft

	future := activeLease(unitID, uuid.New(), "LEASE/00002", testDate(2024, time.June, 1))

	expired := activeLease(unitID, uuid.New(), "LEASE/00003", testDate(2023, time.January, 1))
	expired.EndDate = ptrTime(testDate(2023, time.December, 31))

	require.Nil(t, ResolveCurrentLease([]*models.Lease{draft, future, expired}, today))
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestRecomputeUnitTracksLeaseLifecycle(t *testing.T) {
	ctx := context.Background()
	leases := newFakeLeaseRepo()
	units := newFakeUnitRepo(leases)
	svc := NewOccupancyService(units, leases)
	svc.now = func() time.Time { return testDate(2024, time.May, 1) }

	unit := &models.Unit{ID: uuid.New(), UnitNumber: "101", Status: models.UnitStatusVacant}
	require.NoError(t, units.Create(ctx, unit))

	lease := activeLease(unit.ID, uuid.New(), "LEASE/00001", testDate(2024, time.April, 1))
	require.NoError(t, leases.Create(ctx, lease))

	require.NoError(t, svc.RecomputeUnit(ctx, unit.ID))
	got, err := units.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusOccupied, got.Status)
	require.NotNil(t, got.CurrentLeaseID)
	require.Equal(t, lease.ID, *got.CurrentLeaseID)
	require.NotNil(t, got.CurrentTenantID)
	require.Equal(t, lease.TenantID, *got.CurrentTenantID)

	require.NoError(t, leases.UpdateWithRetry(ctx, lease.ID, func(l *models.Lease) error {
		l.State = models.LeaseStateEnded
		return nil
	}))
	require.NoError(t, svc.RecomputeUnit(ctx, unit.ID))

	got, err = units.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	require.Equal(t, models.UnitStatusVacant, got.Status)
	require.Nil(t, got.CurrentLeaseID)
	require.Nil(t, got.CurrentTenantID)
}
