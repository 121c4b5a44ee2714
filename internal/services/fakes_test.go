package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/property-service/internal/models"
	"github.com/poofware/property-service/internal/repositories"
)

// In-memory repositories backing the service tests. They mirror the SQL
// repos' contracts: reads return copies, UpdateWithRetry bumps row_version,
// missing rows yield pgx.ErrNoRows from the retry loop.

var okTag = pgconn.CommandTag("UPDATE 1")

/* ---------- sequences ---------- */

type fakeSequenceRepo struct {
	counters map[string]int
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: map[string]int{}}
}

func (f *fakeSequenceRepo) NextCode(_ context.Context, code, prefix string) (string, error) {
	f.counters[code]++
	return fmt.Sprintf("%s/%05d", prefix, f.counters[code]), nil
}

var _ repositories.SequenceRepository = (*fakeSequenceRepo)(nil)

/* ---------- tenants ---------- */

type fakeTenantRepo struct {
	items map[uuid.UUID]models.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{items: map[uuid.UUID]models.Tenant{}}
}

func (f *fakeTenantRepo) Create(_ context.Context, t *models.Tenant) error {
	t.SetRowVersion(1)
	f.items[t.ID] = *t
	return nil
}

func (f *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTenantRepo) Update(_ context.Context, t *models.Tenant) error {
	f.items[t.ID] = *t
	return nil
}

func (f *fakeTenantRepo) UpdateIfVersion(_ context.Context, t *models.Tenant, expected int64) (pgconn.CommandTag, error) {
	cur, ok := f.items[t.ID]
	if !ok || cur.GetRowVersion() != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	t.SetRowVersion(expected + 1)
	f.items[t.ID] = *t
	return okTag, nil
}

func (f *fakeTenantRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error {
	cur, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err = f.UpdateIfVersion(ctx, cur, cur.GetRowVersion())
	return err
}

var _ repositories.TenantRepository = (*fakeTenantRepo)(nil)

/* ---------- properties ---------- */

type fakePropertyRepo struct {
	items map[uuid.UUID]models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{items: map[uuid.UUID]models.Property{}}
}

func (f *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	p.SetRowVersion(1)
	f.items[p.ID] = *p
	return nil
}

func (f *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePropertyRepo) ListAll(_ context.Context) ([]*models.Property, error) {
	out := make([]*models.Property, 0, len(f.items))
	for _, p := range f.items {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f *fakePropertyRepo) Update(_ context.Context, p *models.Property) error {
	f.items[p.ID] = *p
	return nil
}

func (f *fakePropertyRepo) UpdateIfVersion(_ context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	cur, ok := f.items[p.ID]
	if !ok || cur.GetRowVersion() != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	p.SetRowVersion(expected + 1)
	f.items[p.ID] = *p
	return okTag, nil
}

func (f *fakePropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	cur, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err = f.UpdateIfVersion(ctx, cur, cur.GetRowVersion())
	return err
}

func (f *fakePropertyRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

var _ repositories.PropertyRepository = (*fakePropertyRepo)(nil)

/* ---------- units ---------- */

type fakeUnitRepo struct {
	items map[uuid.UUID]models.Unit
	// leases feeds ListLeasedByTenant, mirroring the EXISTS subquery.
	leases *fakeLeaseRepo
}

func newFakeUnitRepo(leases *fakeLeaseRepo) *fakeUnitRepo {
	return &fakeUnitRepo{items: map[uuid.UUID]models.Unit{}, leases: leases}
}

func (f *fakeUnitRepo) Create(_ context.Context, u *models.Unit) error {
	u.SetRowVersion(1)
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUnitRepo) CreateMany(ctx context.Context, list []models.Unit) error {
	for i := range list {
		if err := f.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeUnitRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUnitRepo) ListByPropertyID(_ context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	var out []*models.Unit
	for _, u := range f.items {
		if u.PropertyID == propID {
			cp := u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out, nil
}

func (f *fakeUnitRepo) ListLeasedByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Unit, error) {
	seen := map[uuid.UUID]bool{}
	var out []*models.Unit
	for _, l := range f.leases.items {
		if l.TenantID != tenantID || seen[l.UnitID] {
			continue
		}
		seen[l.UnitID] = true
		if u, ok := f.items[l.UnitID]; ok {
			cp := u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out, nil
}

func (f *fakeUnitRepo) Update(_ context.Context, u *models.Unit) error {
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUnitRepo) UpdateIfVersion(_ context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	cur, ok := f.items[u.ID]
	if !ok || cur.GetRowVersion() != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	u.SetRowVersion(expected + 1)
	f.items[u.ID] = *u
	return okTag, nil
}

func (f *fakeUnitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	cur, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err = f.UpdateIfVersion(ctx, cur, cur.GetRowVersion())
	return err
}

func (f *fakeUnitRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

var _ repositories.UnitRepository = (*fakeUnitRepo)(nil)

/* ---------- leases ---------- */

type fakeLeaseRepo struct {
	items map[uuid.UUID]models.Lease
}

func newFakeLeaseRepo() *fakeLeaseRepo {
	return &fakeLeaseRepo{items: map[uuid.UUID]models.Lease{}}
}

func (f *fakeLeaseRepo) Create(_ context.Context, l *models.Lease) error {
	l.SetRowVersion(1)
	f.items[l.ID] = *l
	return nil
}

func (f *fakeLeaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Lease, error) {
	l, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func sortLeasesCurrentFirst(out []*models.Lease) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].Code > out[j].Code
	})
}

func (f *fakeLeaseRepo) ListByUnitID(_ context.Context, unitID uuid.UUID) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range f.items {
		if l.UnitID == unitID {
			cp := l
			out = append(out, &cp)
		}
	}
	sortLeasesCurrentFirst(out)
	return out, nil
}

func (f *fakeLeaseRepo) ListByTenantID(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range f.items {
		if l.TenantID == tenantID {
			cp := l
			out = append(out, &cp)
		}
	}
	sortLeasesCurrentFirst(out)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLeaseRepo) CountByTenantID(_ context.Context, tenantID uuid.UUID) (int, error) {
	n := 0
	for _, l := range f.items {
		if l.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLeaseRepo) ListDueForInvoicing(_ context.Context, date time.Time) ([]*models.Lease, error) {
	var out []*models.Lease
	for _, l := range f.items {
		if l.State != models.LeaseStateActive || l.NextInvoiceDate == nil {
			continue
		}
		if l.NextInvoiceDate.After(date) {
			continue
		}
		cp := l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextInvoiceDate.Equal(*out[j].NextInvoiceDate) {
			return out[i].NextInvoiceDate.Before(*out[j].NextInvoiceDate)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (f *fakeLeaseRepo) FindActiveByTenantAndUnit(_ context.Context, tenantID, unitID uuid.UUID) (*models.Lease, error) {
	var out []*models.Lease
	for _, l := range f.items {
		if l.TenantID == tenantID && l.UnitID == unitID && l.State == models.LeaseStateActive {
			cp := l
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	sortLeasesCurrentFirst(out)
	return out[0], nil
}

func (f *fakeLeaseRepo) Update(_ context.Context, l *models.Lease) error {
	f.items[l.ID] = *l
	return nil
}

func (f *fakeLeaseRepo) UpdateIfVersion(_ context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	cur, ok := f.items[l.ID]
	if !ok || cur.GetRowVersion() != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	l.SetRowVersion(expected + 1)
	f.items[l.ID] = *l
	return okTag, nil
}

func (f *fakeLeaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	cur, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err = f.UpdateIfVersion(ctx, cur, cur.GetRowVersion())
	return err
}

func (f *fakeLeaseRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

var _ repositories.LeaseRepository = (*fakeLeaseRepo)(nil)

/* ---------- invoices ---------- */

type fakeInvoiceRepo struct {
	items map[uuid.UUID]models.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{items: map[uuid.UUID]models.Invoice{}}
}

func (f *fakeInvoiceRepo) Create(_ context.Context, inv *models.Invoice) error {
	inv.SetRowVersion(1)
	f.items[inv.ID] = *inv
	return nil
}

func (f *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (f *fakeInvoiceRepo) ListByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range f.items {
		if inv.LeaseID != nil && *inv.LeaseID == leaseID {
			cp := inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].InvoiceDate.After(out[j].InvoiceDate)
		}
		return out[i].Number > out[j].Number
	})
	return out, nil
}

func (f *fakeInvoiceRepo) ListDueForReminder(_ context.Context, dueDate time.Time) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range f.items {
		if inv.Status != models.InvoiceStatusPosted || inv.PaymentState == models.PaymentStatePaid {
			continue
		}
		if inv.LeaseID == nil || inv.RentSMSDueSent || !inv.DueDate.Equal(dueDate) {
			continue
		}
		cp := inv
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeInvoiceRepo) ListOverdueForNotice(_ context.Context, today time.Time) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range f.items {
		if inv.Status != models.InvoiceStatusPosted || inv.PaymentState == models.PaymentStatePaid {
			continue
		}
		if inv.LeaseID == nil || inv.RentSMSOverdueSent || !inv.DueDate.Before(today) {
			continue
		}
		cp := inv
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, inv *models.Invoice) error {
	f.items[inv.ID] = *inv
	return nil
}

func (f *fakeInvoiceRepo) UpdateIfVersion(_ context.Context, inv *models.Invoice, expected int64) (pgconn.CommandTag, error) {
	cur, ok := f.items[inv.ID]
	if !ok || cur.GetRowVersion() != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	inv.SetRowVersion(expected + 1)
	f.items[inv.ID] = *inv
	return okTag, nil
}

func (f *fakeInvoiceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Invoice) error) error {
	cur, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err = f.UpdateIfVersion(ctx, cur, cur.GetRowVersion())
	return err
}

var _ repositories.InvoiceRepository = (*fakeInvoiceRepo)(nil)

/* ---------- maintenance requests ---------- */

type fakeMaintenanceRepo struct {
	items map[uuid.UUID]models.MaintenanceRequest
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{items: map[uuid.UUID]models.MaintenanceRequest{}}
}

func (f *fakeMaintenanceRepo) Create(_ context.Context, m *models.MaintenanceRequest) error {
	m.SetRowVersion(1)
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMaintenanceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func sortRequestsNewestFirst(out []*models.MaintenanceRequest) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestDate.Equal(out[j].RequestDate) {
			return out[i].RequestDate.After(out[j].RequestDate)
		}
		return out[i].Code > out[j].Code
	})
}

func (f *fakeMaintenanceRepo) ListByTenantID(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.MaintenanceRequest, error) {
	var out []*models.MaintenanceRequest
	for _, m := range f.items {
		if m.TenantID == tenantID {
			cp := m
			out = append(out, &cp)
		}
	}
	sortRequestsNewestFirst(out)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMaintenanceRepo) CountByTenantID(_ context.Context, tenantID uuid.UUID) (int, error) {
	n := 0
	for _, m := range f.items {
		if m.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMaintenanceRepo) ListByUnitID(_ context.Context, unitID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	var out []*models.MaintenanceRequest
	for _, m := range f.items {
		if m.UnitID == unitID {
			cp := m
			out = append(out, &cp)
		}
	}
	sortRequestsNewestFirst(out)
	return out, nil
}

func (f *fakeMaintenanceRepo) Update(_ context.Context, m *models.MaintenanceRequest) error {
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMaintenanceRepo) UpdateIfVersion(_ context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error) {
	cur, ok := f.items[m.ID]
	if !ok || cur.GetRowVersion() != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	m.SetRowVersion(expected + 1)
	f.items[m.ID] = *m
	return okTag, nil
}

func (f *fakeMaintenanceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error {
	cur, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return pgx.ErrNoRows
	}
	if err := mutate(cur); err != nil {
		return err
	}
	_, err = f.UpdateIfVersion(ctx, cur, cur.GetRowVersion())
	return err
}

var _ repositories.MaintenanceRequestRepository = (*fakeMaintenanceRepo)(nil)

/* ---------- notification transports ---------- */

type fakeSMSSender struct {
	sent []string
	to   []string
	err  error
}

func (f *fakeSMSSender) SendSMS(_ context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.sent = append(f.sent, body)
	return nil
}

type fakeEmailSender struct {
	subjects []string
	toEmails []string
}

func (f *fakeEmailSender) SendEmail(_ context.Context, _, toEmail, subject, _, _ string) error {
	f.toEmails = append(f.toEmails, toEmail)
	f.subjects = append(f.subjects, subject)
	return nil
}
