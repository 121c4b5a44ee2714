package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/property-service/internal/models"
)

/* ───────────── public interface ───────────── */

type LeaseRepository interface {
	Create(ctx context.Context, l *models.Lease) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Lease, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error)
	CountByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error)

	// ListDueForInvoicing returns active leases whose next_invoice_date is
	// set and not after the given date. Used by the rent invoice scheduler.
	ListDueForInvoicing(ctx context.Context, date time.Time) ([]*models.Lease, error)

	// FindActiveByTenantAndUnit resolves the tenant's active lease on a unit,
	// or nil when none exists.
	FindActiveByTenantAndUnit(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Lease, error)

	Update(ctx context.Context, l *models.Lease) error
	UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type leaseRepo struct {
	*BaseVersionedRepo[*models.Lease]
	db DB
}

func NewLeaseRepository(db DB) LeaseRepository {
	r := &leaseRepo{db: db}
	selectStmt := baseSelectLease() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanLease)
	return r
}

/* ---------- create ---------- */

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO leases (
			id, code, unit_id, property_id, tenant_id,
			start_date, end_date, rent_amount, billing_cycle, rent_product_id,
			next_invoice_date, last_invoice_date, state,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW(), NOW(), 1)
	`, l.ID, l.Code, l.UnitID, l.PropertyID, l.TenantID,
		l.StartDate, l.EndDate, l.RentAmount, l.BillingCycle, l.RentProductID,
		l.NextInvoiceDate, l.LastInvoiceDate, l.State)
	return err
}

/* ---------- reads ---------- */

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *leaseRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE unit_id=$1 AND deleted_at IS NULL ORDER BY start_date DESC, code DESC", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+` WHERE tenant_id=$1 AND deleted_at IS NULL
		ORDER BY start_date DESC, code DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) CountByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM leases WHERE tenant_id=$1 AND deleted_at IS NULL`, tenantID).Scan(&n)
	return n, err
}

func (r *leaseRepo) ListDueForInvoicing(ctx context.Context, date time.Time) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+`
		WHERE state=$1 AND next_invoice_date IS NOT NULL AND next_invoice_date <= $2
		AND deleted_at IS NULL
		ORDER BY next_invoice_date, code`, models.LeaseStateActive, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (r *leaseRepo) FindActiveByTenantAndUnit(ctx context.Context, tenantID, unitID uuid.UUID) (*models.Lease, error) {
	row := r.db.QueryRow(ctx, baseSelectLease()+`
		WHERE tenant_id=$1 AND unit_id=$2 AND state=$3 AND deleted_at IS NULL
		ORDER BY start_date DESC, code DESC LIMIT 1`, tenantID, unitID, models.LeaseStateActive)
	return scanLease(row)
}

/* ---------- update / delete ---------- */

func (r *leaseRepo) Update(ctx context.Context, l *models.Lease) error {
	_, err := r.update(ctx, l, false, 0)
	return err
}

func (r *leaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, l, true, expected)
}

func (r *leaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *leaseRepo) update(ctx context.Context, l *models.Lease, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE leases
		SET start_date=$1, end_date=$2, rent_amount=$3, billing_cycle=$4,
		    rent_product_id=$5, next_invoice_date=$6, last_invoice_date=$7,
		    state=$8, updated_at=NOW()
	`
	args := []any{l.StartDate, l.EndDate, l.RentAmount, l.BillingCycle,
		l.RentProductID, l.NextInvoiceDate, l.LastInvoiceDate, l.State}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$9 AND row_version=$10`
		args = append(args, l.ID, expected)
	} else {
		sql += ` WHERE id=$9`
		args = append(args, l.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *leaseRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE leases SET deleted_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectLease() string {
	return `
		SELECT id, code, unit_id, property_id, tenant_id,
		start_date, end_date, rent_amount, billing_cycle, rent_product_id,
		next_invoice_date, last_invoice_date, state,
		created_at, updated_at, deleted_at, row_version
		FROM leases`
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	if err := row.Scan(
		&l.ID, &l.Code, &l.UnitID, &l.PropertyID, &l.TenantID,
		&l.StartDate, &l.EndDate, &l.RentAmount, &l.BillingCycle, &l.RentProductID,
		&l.NextInvoiceDate, &l.LastInvoiceDate, &l.State,
		&l.CreatedAt, &l.UpdatedAt, &l.DeletedAt, &l.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func scanLeases(rows pgx.Rows) ([]*models.Lease, error) {
	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
