package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/property-service/internal/models"
)

/* ───────────── public interface ───────────── */

type MaintenanceRequestRepository interface {
	Create(ctx context.Context, m *models.MaintenanceRequest) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error)
	CountByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.MaintenanceRequest, error)

	Update(ctx context.Context, m *models.MaintenanceRequest) error
	UpdateIfVersion(ctx context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error
}

/* ───────────── implementation ───────────── */

type maintenanceRepo struct {
	*BaseVersionedRepo[*models.MaintenanceRequest]
	db DB
}

func NewMaintenanceRequestRepository(db DB) MaintenanceRequestRepository {
	r := &maintenanceRepo{db: db}
	selectStmt := baseSelectMaintenance() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanMaintenance)
	return r
}

func (r *maintenanceRepo) Create(ctx context.Context, m *models.MaintenanceRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO maintenance_requests (
			id, code, tenant_id, unit_id, property_id, lease_id,
			request_date, issue_type, description, photo, photo_filename,
			state, assigned_to_id,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW(), NOW(), 1)
	`, m.ID, m.Code, m.TenantID, m.UnitID, m.PropertyID, m.LeaseID,
		m.RequestDate, m.IssueType, m.Description, m.Photo, m.PhotoFilename,
		m.State, m.AssignedToID)
	return err
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *maintenanceRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectMaintenance()+`
		WHERE tenant_id=$1 AND deleted_at IS NULL
		ORDER BY request_date DESC, code DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaintenances(rows)
}

func (r *maintenanceRepo) CountByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM maintenance_requests WHERE tenant_id=$1 AND deleted_at IS NULL`, tenantID).Scan(&n)
	return n, err
}

func (r *maintenanceRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectMaintenance()+`
		WHERE unit_id=$1 AND deleted_at IS NULL
		ORDER BY request_date DESC, code DESC`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaintenances(rows)
}

func (r *maintenanceRepo) Update(ctx context.Context, m *models.MaintenanceRequest) error {
	_, err := r.update(ctx, m, false, 0)
	return err
}

func (r *maintenanceRepo) UpdateIfVersion(ctx context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, m, true, expected)
}

func (r *maintenanceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *maintenanceRepo) update(ctx context.Context, m *models.MaintenanceRequest, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE maintenance_requests
		SET tenant_id=$1, unit_id=$2, property_id=$3, lease_id=$4,
		    issue_type=$5, description=$6, state=$7, assigned_to_id=$8, updated_at=NOW()
	`
	args := []any{m.TenantID, m.UnitID, m.PropertyID, m.LeaseID,
		m.IssueType, m.Description, m.State, m.AssignedToID}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$9 AND row_version=$10`
		args = append(args, m.ID, expected)
	} else {
		sql += ` WHERE id=$9`
		args = append(args, m.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

/* ---------- internals ---------- */

func baseSelectMaintenance() string {
	return `
		SELECT id, code, tenant_id, unit_id, property_id, lease_id,
		request_date, issue_type, description, photo, photo_filename,
		state, assigned_to_id,
		created_at, updated_at, deleted_at, row_version
		FROM maintenance_requests`
}

func scanMaintenance(row pgx.Row) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	if err := row.Scan(
		&m.ID, &m.Code, &m.TenantID, &m.UnitID, &m.PropertyID, &m.LeaseID,
		&m.RequestDate, &m.IssueType, &m.Description, &m.Photo, &m.PhotoFilename,
		&m.State, &m.AssignedToID,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt, &m.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func scanMaintenances(rows pgx.Rows) ([]*models.MaintenanceRequest, error) {
	var out []*models.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
