package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// MaintenanceService links tenant repair tickets to the active lease and
// enforces the tenant/unit consistency guard. States move forward only:
// new -> in_progress -> done.
type MaintenanceService struct {
	maintRepo repositories.MaintenanceRequestRepository
	leaseRepo repositories.LeaseRepository
	unitRepo  repositories.UnitRepository
	propRepo  repositories.PropertyRepository
	seqRepo   repositories.SequenceRepository
	email     EmailSender
	now       func() time.Time
}

func NewMaintenanceService(
	maintRepo repositories.MaintenanceRequestRepository,
	leaseRepo repositories.LeaseRepository,
	unitRepo repositories.UnitRepository,
	propRepo repositories.PropertyRepository,
	seqRepo repositories.SequenceRepository,
	email EmailSender,
) *MaintenanceService {
	return &MaintenanceService{
		maintRepo: maintRepo,
		leaseRepo: leaseRepo,
		unitRepo:  unitRepo,
		propRepo:  propRepo,
		seqRepo:   seqRepo,
		email:     email,
		now:       time.Now,
	}
}

// SetNow overrides the clock; tests only.
func (s *MaintenanceService) SetNow(now func() time.Time) { s.now = now }

type CreateMaintenanceParams struct {
	Code          string
	TenantID      uuid.UUID
	UnitID        uuid.UUID
	IssueType     models.IssueType
	Description   string
	Photo         []byte
	PhotoFilename string
}

// CreateRequest records a new maintenance request. The lease link is derived
// from the tenant's active lease on the unit; when tenant and unit do not
// match any active lease the record is rejected, unless the actor is
// internal (who may record requests for arbitrary units).
func (s *MaintenanceService) CreateRequest(ctx context.Context, actor Actor, p CreateMaintenanceParams) (*models.MaintenanceRequest, error) {
	unit, err := s.unitRepo.GetByID(ctx, p.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrNotFound
	}

	lease, err := s.resolveLeaseLink(ctx, actor, p.TenantID, p.UnitID)
	if err != nil {
		return nil, err
	}

	code, err := nextCodeIfEmpty(ctx, s.seqRepo, p.Code, seqMaintenance, prefixMaintenance)
	if err != nil {
		return nil, err
	}

	issue := p.IssueType
	if issue == "" {
		issue = models.IssueOther
	}

	req := &models.MaintenanceRequest{
		ID:            uuid.New(),
		Code:          code,
		TenantID:      p.TenantID,
		UnitID:        unit.ID,
		PropertyID:    unit.PropertyID,
		RequestDate:   utils.DateOnly(s.now().UTC()),
		IssueType:     issue,
		Description:   p.Description,
		Photo:         p.Photo,
		PhotoFilename: p.PhotoFilename,
		State:         models.MaintenanceStateNew,
		CreatedAt:     s.now().UTC(),
	}
	if lease != nil {
		req.LeaseID = utils.Ptr(lease.ID)
	}
	if err := s.maintRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifyManager(ctx, req, unit)
	return req, nil
}

// Relink recomputes the lease link after a tenant or unit change and
// re-applies the consistency guard.
func (s *MaintenanceService) Relink(ctx context.Context, actor Actor, id, tenantID, unitID uuid.UUID) (*models.MaintenanceRequest, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, utils.ErrNotFound
	}
	lease, err := s.resolveLeaseLink(ctx, actor, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	err = s.maintRepo.UpdateWithRetry(ctx, id, func(m *models.MaintenanceRequest) error {
		m.TenantID = tenantID
		m.UnitID = unitID
		m.PropertyID = unit.PropertyID
		if lease != nil {
			m.LeaseID = utils.Ptr(lease.ID)
		} else {
			m.LeaseID = nil
		}
		return nil
	})
	if err != nil {
		return nil, mapNoRows(err)
	}
	return s.maintRepo.GetByID(ctx, id)
}

func (s *MaintenanceService) Assign(ctx context.Context, id, userID uuid.UUID) error {
	return mapNoRows(s.maintRepo.UpdateWithRetry(ctx, id, func(m *models.MaintenanceRequest) error {
		m.AssignedToID = utils.Ptr(userID)
		return nil
	}))
}

// SetInProgress rejects the transition when nobody is assigned.
func (s *MaintenanceService) SetInProgress(ctx context.Context, id uuid.UUID) error {
	return mapNoRows(s.maintRepo.UpdateWithRetry(ctx, id, func(m *models.MaintenanceRequest) error {
		if m.State != models.MaintenanceStateNew {
			return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, m.State, models.MaintenanceStateInProgress)
		}
		if m.AssignedToID == nil {
			return utils.ErrAssigneeRequired
		}
		m.State = models.MaintenanceStateInProgress
		return nil
	}))
}

func (s *MaintenanceService) SetDone(ctx context.Context, id uuid.UUID) error {
	return mapNoRows(s.maintRepo.UpdateWithRetry(ctx, id, func(m *models.MaintenanceRequest) error {
		if m.State != models.MaintenanceStateInProgress {
			return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, m.State, models.MaintenanceStateDone)
		}
		m.State = models.MaintenanceStateDone
		return nil
	}))
}

func (s *MaintenanceService) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	req, err := s.maintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, utils.ErrNotFound
	}
	return req, nil
}

/* ---------- internals ---------- */

func (s *MaintenanceService) resolveLeaseLink(ctx context.Context, actor Actor, tenantID, unitID uuid.UUID) (*models.Lease, error) {
	lease, err := s.leaseRepo.FindActiveByTenantAndUnit(ctx, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	if lease == nil && !actor.Internal {
		return nil, utils.ErrUnitNotLeasedByTenant
	}
	return lease, nil
}

// notifyManager emails the property manager about a new request. Best
// effort: a transport failure never fails the create.
func (s *MaintenanceService) notifyManager(ctx context.Context, req *models.MaintenanceRequest, unit *models.Unit) {
	if s.email == nil {
		return
	}
	prop, err := s.propRepo.GetByID(ctx, req.PropertyID)
	if err != nil || prop == nil || prop.ManagerEmail == "" {
		return
	}
	subject := fmt.Sprintf("New maintenance request %s: %s", req.Code, unit.DisplayName())
	plainText := fmt.Sprintf(
		"A new maintenance request was submitted.\n\nRequest: %s\nUnit: %s\nIssue: %s\nDescription: %s\nDate: %s",
		req.Code, unit.DisplayName(), req.IssueType, req.Description, req.RequestDate.Format("2006-01-02"),
	)
	if err := s.email.SendEmail(ctx, prop.PropertyName, prop.ManagerEmail, subject, plainText, ""); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to email manager about request %s", req.Code)
	}
}
