package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/property-service/internal/repositories"
	"github.com/poofware/property-service/internal/utils"
)

// Named sequences, one per entity type. Codes are assigned exactly once at
// creation and only when the caller did not supply one.
const (
	seqProperty    = "property"
	seqUnit        = "unit"
	seqLease       = "lease"
	seqMaintenance = "maintenance"
	seqInvoice     = "invoice"
)

const (
	prefixProperty    = "PROP"
	prefixUnit        = "UNIT"
	prefixLease       = "LEASE"
	prefixMaintenance = "MNT"
	prefixInvoice     = "INV"
)

// Actor identifies the caller for access decisions. Internal users may
// bypass tenant-link validation (e.g. recording requests during onboarding).
type Actor struct {
	TenantID uuid.UUID
	Internal bool
}

// mapNoRows translates the repository's missing-row error for writes keyed
// on caller-supplied IDs.
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.ErrNotFound
	}
	return err
}

func nextCodeIfEmpty(ctx context.Context, seqRepo repositories.SequenceRepository, existing, seq, prefix string) (string, error) {
	if existing != "" {
		return existing, nil
	}
	return seqRepo.NextCode(ctx, seq, prefix)
}
