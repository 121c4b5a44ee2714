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

type InvoiceRepository interface {
	// Create persists the invoice and its lines.
	Create(ctx context.Context, inv *models.Invoice) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error)

	// ListDueForReminder: posted, unpaid, lease-linked invoices due exactly
	// on the given date whose due-reminder flag is still unset.
	ListDueForReminder(ctx context.Context, dueDate time.Time) ([]*models.Invoice, error)
	// ListOverdueForNotice: same preconditions, due strictly before the given
	// date, overdue flag unset.
	ListOverdueForNotice(ctx context.Context, today time.Time) ([]*models.Invoice, error)

	Update(ctx context.Context, inv *models.Invoice) error
	UpdateIfVersion(ctx context.Context, inv *models.Invoice, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Invoice) error) error
}

/* ───────────── implementation ───────────── */

type invoiceRepo struct {
	*BaseVersionedRepo[*models.Invoice]
	db DB
}

func NewInvoiceRepository(db DB) InvoiceRepository {
	r := &invoiceRepo{db: db}
	selectStmt := baseSelectInvoice() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanInvoice)
	return r
}

/* ---------- create ---------- */

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoices (
			id, number, tenant_id, lease_id, unit_id,
			invoice_date, due_date, origin, amount_total,
			status, payment_state, access_token,
			rent_sms_due_sent, rent_sms_overdue_sent, rent_sms_paid_sent,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, NOW(), NOW(), 1)
	`, inv.ID, inv.Number, inv.TenantID, inv.LeaseID, inv.UnitID,
		inv.InvoiceDate, inv.DueDate, inv.Origin, inv.AmountTotal,
		inv.Status, inv.PaymentState, inv.AccessToken,
		inv.RentSMSDueSent, inv.RentSMSOverdueSent, inv.RentSMSPaidSent)
	if err != nil {
		return err
	}
	for i := range inv.Lines {
		line := &inv.Lines[i]
		if line.InvoiceID == uuid.Nil {
			line.InvoiceID = inv.ID
		}
		if _, err := r.db.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, product_id, line_name, quantity, price_unit)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, line.ID, line.InvoiceID, line.ProductID, line.LineName, line.Quantity, line.PriceUnit); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- reads ---------- */

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, err := r.BaseVersionedRepo.GetByID(ctx, id.String())
	if err != nil || inv == nil {
		return inv, err
	}
	if err := r.loadLines(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvoice()+" WHERE lease_id=$1 AND deleted_at IS NULL ORDER BY invoice_date DESC, number DESC", leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListDueForReminder(ctx context.Context, dueDate time.Time) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, baseSelectInvoice()+`
		WHERE status=$1 AND payment_state<>$2 AND lease_id IS NOT NULL
		AND due_date=$3 AND rent_sms_due_sent=FALSE AND deleted_at IS NULL`,
		models.InvoiceStatusPosted, models.PaymentStatePaid, dueDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

func (r *invoiceRepo) ListOverdueForNotice(ctx context.Context, today time.Time) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, baseSelectInvoice()+`
		WHERE status=$1 AND payment_state<>$2 AND lease_id IS NOT NULL
		AND due_date < $3 AND rent_sms_overdue_sent=FALSE AND deleted_at IS NULL`,
		models.InvoiceStatusPosted, models.PaymentStatePaid, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

/* ---------- update ---------- */

func (r *invoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	_, err := r.update(ctx, inv, false, 0)
	return err
}

func (r *invoiceRepo) UpdateIfVersion(ctx context.Context, inv *models.Invoice, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, inv, true, expected)
}

func (r *invoiceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Invoice) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *invoiceRepo) update(ctx context.Context, inv *models.Invoice, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE invoices
		SET due_date=$1, amount_total=$2, status=$3, payment_state=$4,
		    access_token=$5, rent_sms_due_sent=$6, rent_sms_overdue_sent=$7,
		    rent_sms_paid_sent=$8, updated_at=NOW()
	`
	args := []any{inv.DueDate, inv.AmountTotal, inv.Status, inv.PaymentState,
		inv.AccessToken, inv.RentSMSDueSent, inv.RentSMSOverdueSent, inv.RentSMSPaidSent}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$9 AND row_version=$10`
		args = append(args, inv.ID, expected)
	} else {
		sql += ` WHERE id=$9`
		args = append(args, inv.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

/* ---------- internals ---------- */

func (r *invoiceRepo) loadLines(ctx context.Context, inv *models.Invoice) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, product_id, line_name, quantity, price_unit
		FROM invoice_lines WHERE invoice_id=$1`, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var line models.InvoiceLine
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ProductID,
			&line.LineName, &line.Quantity, &line.PriceUnit); err != nil {
			return err
		}
		inv.Lines = append(inv.Lines, line)
	}
	return rows.Err()
}

func baseSelectInvoice() string {
	return `
		SELECT id, number, tenant_id, lease_id, unit_id,
		invoice_date, due_date, origin, amount_total,
		status, payment_state, access_token,
		rent_sms_due_sent, rent_sms_overdue_sent, rent_sms_paid_sent,
		created_at, updated_at, deleted_at, row_version
		FROM invoices`
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	if err := row.Scan(
		&inv.ID, &inv.Number, &inv.TenantID, &inv.LeaseID, &inv.UnitID,
		&inv.InvoiceDate, &inv.DueDate, &inv.Origin, &inv.AmountTotal,
		&inv.Status, &inv.PaymentState, &inv.AccessToken,
		&inv.RentSMSDueSent, &inv.RentSMSOverdueSent, &inv.RentSMSPaidSent,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.DeletedAt, &inv.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func scanInvoices(rows pgx.Rows) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
