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

// CatalogService covers the static hierarchy: properties and their units.
type CatalogService struct {
	propRepo repositories.PropertyRepository
	unitRepo repositories.UnitRepository
	seqRepo  repositories.SequenceRepository
}

func NewCatalogService(
	propRepo repositories.PropertyRepository,
	unitRepo repositories.UnitRepository,
	seqRepo repositories.SequenceRepository,
) *CatalogService {
	return &CatalogService{propRepo: propRepo, unitRepo: unitRepo, seqRepo: seqRepo}
}

type CreatePropertyParams struct {
	Code         string
	ManagerEmail string
	PropertyName string
	Street       string
	Street2      string
	City         string
	State        string
	ZipCode      string
	Country      string
}

func (s *CatalogService) CreateProperty(ctx context.Context, p CreatePropertyParams) (*models.Property, error) {
	code, err := nextCodeIfEmpty(ctx, s.seqRepo, p.Code, seqProperty, prefixProperty)
	if err != nil {
		return nil, err
	}
	prop := &models.Property{
		ID:           uuid.New(),
		Code:         code,
		ManagerEmail: p.ManagerEmail,
		PropertyName: p.PropertyName,
		Street:       p.Street,
		Street2:      p.Street2,
		City:         p.City,
		State:        p.State,
		ZipCode:      p.ZipCode,
		Country:      p.Country,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.propRepo.Create(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

type CreateUnitParams struct {
	Code       string
	PropertyID uuid.UUID
	UnitName   string
	UnitNumber string
	RentAmount decimal.Decimal
}

func (s *CatalogService) CreateUnit(ctx context.Context, p CreateUnitParams) (*models.Unit, error) {
	prop, err := s.propRepo.GetByID(ctx, p.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, utils.ErrNotFound
	}
	code, err := nextCodeIfEmpty(ctx, s.seqRepo, p.Code, seqUnit, prefixUnit)
	if err != nil {
		return nil, err
	}
	unit := &models.Unit{
		ID:         uuid.New(),
		Code:       code,
		PropertyID: p.PropertyID,
		UnitName:   p.UnitName,
		UnitNumber: p.UnitNumber,
		RentAmount: p.RentAmount,
		Status:     models.UnitStatusVacant,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *CatalogService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, []*models.Unit, error) {
	prop, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if prop == nil {
		return nil, nil, utils.ErrNotFound
	}
	units, err := s.unitRepo.ListByPropertyID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return prop, units, nil
}

func (s *CatalogService) ListProperties(ctx context.Context) ([]*models.Property, error) {
	return s.propRepo.ListAll(ctx)
}
