// Package numerator issues gapless, human-readable document references
// such as ALC-2026-00042. Counters live in the sys_sequences table and
// are advanced with a single UPSERT + RETURNING, so two concurrent
// callers can never observe the same number.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the minimal database surface the numerator needs.
// *pgxpool.Pool and pgx.Tx both satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc lets callers route the numerator through an ambient
// transaction by resolving the querier per call.
type QuerierFunc func(ctx context.Context) Querier

// Config controls how a reference is formatted.
type Config struct {
	IncludeYear bool
	PadWidth    int
}

// DefaultConfig yields the PREFIX-YEAR-NNNNN format.
func DefaultConfig() Config {
	return Config{IncludeYear: true, PadWidth: 5}
}

// Service allocates sequence numbers. Counters reset each calendar year
// because the year is part of the sequence key.
type Service struct {
	querier QuerierFunc
	cfg     Config
	now     func() time.Time
}

// New creates a numerator over a fixed querier.
func New(q Querier) *Service {
	return NewWithResolver(func(context.Context) Querier { return q })
}

// NewWithResolver creates a numerator that resolves its querier per
// call, typically via a transaction manager.
func NewWithResolver(resolve QuerierFunc) *Service {
	return &Service{
		querier: resolve,
		cfg:     DefaultConfig(),
		now:     time.Now,
	}
}

// Next returns the next reference for the given prefix, e.g. "ALC"
// yields ALC-2026-00001, ALC-2026-00002 and so on.
func (s *Service) Next(ctx context.Context, prefix string) (string, error) {
	year := s.now().UTC().Year()

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (sequence_type, year, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (sequence_type, year)
		DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, prefix, year).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", prefix, err)
	}

	return s.format(prefix, year, num), nil
}

func (s *Service) format(prefix string, year int, num int64) string {
	if s.cfg.IncludeYear {
		return fmt.Sprintf("%s-%d-%0*d", prefix, year, s.cfg.PadWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", prefix, s.cfg.PadWidth, num)
}
