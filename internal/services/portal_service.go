package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// DefaultPageSize is the portal pager step.
const DefaultPageSize = 20

// PortalService supplies the tenant portal's queries and mutations. Auth,
// sessions and rendering live with the HTTP layer; this service only decides
// what the authenticated tenant may see and do.
type PortalService struct {
	leaseRepo   repositories.LeaseRepository
	invoiceRepo repositories.InvoiceRepository
	unitRepo    repositories.UnitRepository
	maintRepo   repositories.MaintenanceRequestRepository
	maintenance *MaintenanceService
	now         func() time.Time
}

func NewPortalService(
	leaseRepo repositories.LeaseRepository,
	invoiceRepo repositories.InvoiceRepository,
	unitRepo repositories.UnitRepository,
	maintRepo repositories.MaintenanceRequestRepository,
	maintenance *MaintenanceService,
) *PortalService {
	return &PortalService{
		leaseRepo:   leaseRepo,
		invoiceRepo: invoiceRepo,
		unitRepo:    unitRepo,
		maintRepo:   maintRepo,
		maintenance: maintenance,
		now:         time.Now,
	}
}

// SetNow overrides the clock; tests only.
func (s *PortalService) SetNow(now func() time.Time) { s.now = now }

// HomeCounters backs the portal landing page counts.
func (s *PortalService) HomeCounters(ctx context.Context, tenantID uuid.UUID) (leaseCount, maintenanceCount int, err error) {
	leaseCount, err = s.leaseRepo.CountByTenantID(ctx, tenantID)
	if err != nil {
		return 0, 0, err
	}
	maintenanceCount, err = s.maintRepo.CountByTenantID(ctx, tenantID)
	if err != nil {
		return 0, 0, err
	}
	return leaseCount, maintenanceCount, nil
}

// ListLeases returns the tenant's leases ordered by start date descending,
// one page at a time.
func (s *PortalService) ListLeases(ctx context.Context, tenantID uuid.UUID, page, size int) ([]*models.Lease, int, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total, err := s.leaseRepo.CountByTenantID(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	leases, err := s.leaseRepo.ListByTenantID(ctx, tenantID, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	return leases, total, nil
}

// LeaseDetail returns the lease and its invoices (invoice date descending).
// Tenants only see their own leases; internal actors see everything.
func (s *PortalService) LeaseDetail(ctx context.Context, actor Actor, leaseID uuid.UUID) (*models.Lease, []*models.Invoice, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, nil, err
	}
	if lease == nil {
		return nil, nil, utils.ErrNotFound
	}
	if !actor.Internal && lease.TenantID != actor.TenantID {
		return nil, nil, utils.ErrInvalidAccess
	}
	invoices, err := s.invoiceRepo.ListByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, nil, err
	}
	return lease, invoices, nil
}

// ListMaintenance pages through the tenant's requests, newest first.
func (s *PortalService) ListMaintenance(ctx context.Context, tenantID uuid.UUID, page, size int) ([]*models.MaintenanceRequest, int, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total, err := s.maintRepo.CountByTenantID(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	reqs, err := s.maintRepo.ListByTenantID(ctx, tenantID, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// MaintenanceDetail enforces the same ownership rule as LeaseDetail.
func (s *PortalService) MaintenanceDetail(ctx context.Context, actor Actor, id uuid.UUID) (*models.MaintenanceRequest, error) {
	req, err := s.maintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, utils.ErrNotFound
	}
	if !actor.Internal && req.TenantID != actor.TenantID {
		return nil, utils.ErrInvalidAccess
	}
	return req, nil
}

// AllowedUnits lists the units the tenant currently leases: the choices
// offered on the new-maintenance form and the set submissions are checked
// against.
func (s *PortalService) AllowedUnits(ctx context.Context, tenantID uuid.UUID) ([]*models.Unit, error) {
	units, err := s.unitRepo.ListLeasedByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	today := utils.DateOnly(s.now().UTC())
	var allowed []*models.Unit
	for _, u := range units {
		lease, err := s.leaseRepo.FindActiveByTenantAndUnit(ctx, tenantID, u.ID)
		if err != nil {
			return nil, err
		}
		if lease != nil && lease.CurrentOn(today) {
			allowed = append(allowed, u)
		}
	}
	return allowed, nil
}

// SubmitMaintenance handles a portal form submission. Unit IDs outside the
// tenant's allowed set are rejected before the create runs.
func (s *PortalService) SubmitMaintenance(ctx context.Context, tenantID uuid.UUID, p CreateMaintenanceParams) (*models.MaintenanceRequest, error) {
	allowed, err := s.AllowedUnits(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ok := false
	for _, u := range allowed {
		if u.ID == p.UnitID {
			ok = true
			break
		}
	}
	if !ok {
		return nil, utils.ErrUnitNotLeasedByTenant
	}
	p.TenantID = tenantID
	return s.maintenance.CreateRequest(ctx, Actor{TenantID: tenantID}, p)
}
