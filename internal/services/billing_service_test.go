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

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type billingFixture struct {
	leases   *fakeLeaseRepo
	invoices *fakeInvoiceRepo
	units    *fakeUnitRepo
	seq      *fakeSequenceRepo
	svc      *BillingService
}

func newBillingFixture(now time.Time) *billingFixture {
	leases := newFakeLeaseRepo()
	units := newFakeUnitRepo(leases)
	invoices := newFakeInvoiceRepo()
	seq := newFakeSequenceRepo()
	svc := NewBillingService(leases, invoices, units, seq)
	svc.SetNow(func() time.Time { return now })
	return &billingFixture{leases: leases, invoices: invoices, units: units, seq: seq, svc: svc}
}

func (f *billingFixture) addLease(state models.LeaseState, next time.Time, rentProduct *uuid.UUID) *models.Lease {
	tenantID := uuid.New()
	unit := &models.Unit{
		ID:         uuid.New(),
		Code:       "UNIT/00001",
		PropertyID: uuid.New(),
		UnitName:   "Garden Flat",
		UnitNumber: "101",
		RentAmount: decimal.NewFromInt(1000),
	}
	_ = f.units.Create(context.Background(), unit)

	lease := &models.Lease{
		ID:              uuid.New(),
		Code:            "LEASE/00001",
		UnitID:          unit.ID,
		PropertyID:      unit.PropertyID,
		TenantID:        tenantID,
		StartDate:       next,
		RentAmount:      decimal.NewFromInt(1000),
		BillingCycle:    models.BillingCycleMonthly,
		RentProductID:   rentProduct,
		NextInvoiceDate: utils.Ptr(next),
		State:           state,
	}
	_ = f.leases.Create(context.Background(), lease)
	return lease
}

func TestGenerateRentInvoicesAdvancesCursor(t *testing.T) {
	ctx := context.Background()
	now := testDate(2024, time.January, 31)
	f := newBillingFixture(now)
	product := uuid.New()
	lease := f.addLease(models.LeaseStateActive, testDate(2024, time.January, 31), &product)

	require.NoError(t, f.svc.GenerateRentInvoices(ctx))

	invoices, err := f.invoices.ListByLeaseID(ctx, lease.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	inv := invoices[0]
	require.Equal(t, "INV/00001", inv.Number)
	require.True(t, inv.InvoiceDate.Equal(testDate(2024, time.January, 31)))
	require.True(t, inv.DueDate.Equal(inv.InvoiceDate))
	require.Equal(t, lease.Code, inv.Origin)
	require.Equal(t, models.InvoiceStatusPosted, inv.Status)
	require.Equal(t, models.PaymentStateNotPaid, inv.PaymentState)
	require.True(t, inv.AmountTotal.Equal(decimal.NewFromInt(1000)))
	require.Len(t, inv.Lines, 1)
	require.Equal(t, "Rent for UNIT/00001 - Garden Flat (January 2024)", inv.Lines[0].LineName)

	updated, err := f.leases.GetByID(ctx, lease.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastInvoiceDate)
	require.True(t, updated.LastInvoiceDate.Equal(testDate(2024, time.January, 31)))
	// Jan 31 + 1 month clamps to the leap-year Feb 29.
	require.NotNil(t, updated.NextInvoiceDate)
	require.True(t, updated.NextInvoiceDate.Equal(testDate(2024, time.February, 29)))
}

func TestGenerateRentInvoicesIsIdempotentPerDay(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(testDate(2024, time.January, 31))
	product := uuid.New()
	lease := f.addLease(models.LeaseStateActive, testDate(2024, time.January, 31), &product)

	require.NoError(t, f.svc.GenerateRentInvoices(ctx))
	require.NoError(t, f.svc.GenerateRentInvoices(ctx))

	invoices, err := f.invoices.ListByLeaseID(ctx, lease.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1, "cursor moved past today, second run must not invoice again")
}

func TestGenerateRentInvoicesIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(testDate(2024, time.March, 1))
	product := uuid.New()
	broken := f.addLease(models.LeaseStateActive, testDate(2024, time.March, 1), nil)
	healthy := f.addLease(models.LeaseStateActive, testDate(2024, time.March, 1), &product)

	require.NoError(t, f.svc.GenerateRentInvoices(ctx), "batch must not abort on a misconfigured lease")

	brokenInvoices, err := f.invoices.ListByLeaseID(ctx, broken.ID)
	require.NoError(t, err)
	require.Empty(t, brokenInvoices)

	healthyInvoices, err := f.invoices.ListByLeaseID(ctx, healthy.ID)
	require.NoError(t, err)
	require.Len(t, healthyInvoices, 1)
}

func TestGenerateInvoiceForLeaseSurfacesConfigErrors(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(testDate(2024, time.March, 1))

	_, err := f.svc.GenerateInvoiceForLease(ctx, uuid.New(), nil)
	require.ErrorIs(t, err, utils.ErrNotFound)

	product := uuid.New()
	draft := f.addLease(models.LeaseStateDraft, testDate(2024, time.March, 1), &product)
	_, err = f.svc.GenerateInvoiceForLease(ctx, draft.ID, nil)
	require.ErrorIs(t, err, utils.ErrLeaseNotActive)

	noProduct := f.addLease(models.LeaseStateActive, testDate(2024, time.March, 1), nil)
	_, err = f.svc.GenerateInvoiceForLease(ctx, noProduct.ID, nil)
	require.ErrorIs(t, err, utils.ErrMissingRentProduct)
}

func TestGenerateInvoiceNeverMovesCursorBackwards(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(testDate(2024, time.June, 1))
	product := uuid.New()
	lease := f.addLease(models.LeaseStateActive, testDate(2024, time.June, 1), &product)

	// Backfill an invoice for a much earlier month.
	early := testDate(2024, time.January, 15)
	_, err := f.svc.GenerateInvoiceForLease(ctx, lease.ID, &early)
	require.NoError(t, err)

	updated, err := f.leases.GetByID(ctx, lease.ID)
	require.NoError(t, err)
	require.True(t, updated.NextInvoiceDate.Equal(testDate(2024, time.June, 1)),
		"cursor must stay at %s, got %s", testDate(2024, time.June, 1), updated.NextInvoiceDate)
	require.True(t, updated.LastInvoiceDate.Equal(early))
}
