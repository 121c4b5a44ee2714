package repositories

import (
	"context"
	"fmt"
)

/* ───────────── public interface ───────────── */

// SequenceRepository mints human-readable record codes from named,
// monotonically increasing counters. NextCode is atomic: concurrent callers
// never receive the same number for a given sequence.
type SequenceRepository interface {
	NextCode(ctx context.Context, code, prefix string) (string, error)
}

/* ───────────── implementation ───────────── */

type sequenceRepo struct {
	db DB
}

func NewSequenceRepository(db DB) SequenceRepository {
	return &sequenceRepo{db: db}
}

func (r *sequenceRepo) NextCode(ctx context.Context, code, prefix string) (string, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sequences (code, next_number) VALUES ($1, 1)
		ON CONFLICT (code) DO UPDATE SET next_number = sequences.next_number + 1
		RETURNING next_number
	`, code).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%05d", prefix, n), nil
}
