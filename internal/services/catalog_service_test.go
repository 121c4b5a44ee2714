package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/utils"
)

func newCatalogService() (*CatalogService, *fakePropertyRepo, *fakeUnitRepo) {
	props := newFakePropertyRepo()
	units := newFakeUnitRepo(newFakeLeaseRepo())
	return NewCatalogService(props, units, newFakeSequenceRepo()), props, units
}

func TestCreatePropertyAssignsCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogService()

	first, err := svc.CreateProperty(ctx, CreatePropertyParams{
		PropertyName: "Demo Gardens",
		ManagerEmail: "manager@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "PROP/00001", first.Code)

	second, err := svc.CreateProperty(ctx, CreatePropertyParams{PropertyName: "Riverside"})
	require.NoError(t, err)
	require.Equal(t, "PROP/00002", second.Code)

	// A caller-supplied code wins over the sequence.
	named, err := svc.CreateProperty(ctx, CreatePropertyParams{Code: "PROP/CUSTOM", PropertyName: "Imported"})
	require.NoError(t, err)
	require.Equal(t, "PROP/CUSTOM", named.Code)
}

func TestCreateUnitRequiresProperty(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogService()

	prop, err := svc.CreateProperty(ctx, CreatePropertyParams{PropertyName: "Demo Gardens"})
	require.NoError(t, err)

	unit, err := svc.CreateUnit(ctx, CreateUnitParams{
		PropertyID: prop.ID,
		UnitName:   "Garden Flat",
		UnitNumber: "101",
		RentAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	require.Equal(t, "UNIT/00001", unit.Code)
	require.Equal(t, models.UnitStatusVacant, unit.Status)

	_, err = svc.CreateUnit(ctx, CreateUnitParams{PropertyID: uuid.New(), UnitNumber: "999"})
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestGetPropertyWithUnits(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCatalogService()

	prop, err := svc.CreateProperty(ctx, CreatePropertyParams{PropertyName: "Demo Gardens"})
	require.NoError(t, err)
	for _, number := range []string{"101", "102"} {
		_, err := svc.CreateUnit(ctx, CreateUnitParams{PropertyID: prop.ID, UnitNumber: number})
		require.NoError(t, err)
	}

	got, units, err := svc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	require.Equal(t, prop.ID, got.ID)
	require.Len(t, units, 2)

	_, _, err = svc.GetProperty(ctx, uuid.New())
	require.ErrorIs(t, err, utils.ErrNotFound)
}
