// Package numbering issues human-readable quote numbers (ORC-YYYY-NNNNN).
//
// Both backends keep one counter per calendar year, so the first quote of a
// year is always NNNNN = 00001. The year is taken from the configured location
// on the application clock, not from the database or Redis server.
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Prefix starts every quote number.
const Prefix = "ORC"

// Format renders a quote number for year and sequence.
func Format(year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%05d", Prefix, year, seq)
}

// Generator issues the next quote number.
type Generator interface {
	Next(ctx context.Context) (string, error)
}

type clock struct {
	Location *time.Location
	Now      func() time.Time
}

func (c clock) year() int {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return now.Year()
}

// SequenceQuerier is the generated query that calls proximo_numero_orcamento(ano).
type SequenceQuerier interface {
	NextQuoteNumber(ctx context.Context, ano int32) (int64, error)
}

// Postgres draws numbers from the per-year counter table. Numbers are
// committed outside the quote transaction, so a failed submission leaves a gap.
type Postgres struct {
	Q        SequenceQuerier
	Location *time.Location
	Now      func() time.Time
}

// Next implements quote.Numberer.
func (p Postgres) Next(ctx context.Context) (string, error) {
	if p.Q == nil {
		return "", errors.New("numbering: querier not configured")
	}
	year := clock{Location: p.Location, Now: p.Now}.year()
	seq, err := p.Q.NextQuoteNumber(ctx, int32(year))
	if err != nil {
		return "", fmt.Errorf("numbering: next for %d: %w", year, err)
	}
	if seq <= 0 {
		return "", fmt.Errorf("numbering: counter for %d returned %d", year, seq)
	}
	return Format(year, seq), nil
}

// Redis keeps one INCR counter per calendar year.
type Redis struct {
	R        redis.UniversalClient
	Prefix   string
	Location *time.Location
	Now      func() time.Time
}

func (r Redis) key(year int) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = "quote:number"
	}
	return fmt.Sprintf("%s:%d", prefix, year)
}

// Next implements quote.Numberer.
func (r Redis) Next(ctx context.Context) (string, error) {
	if r.R == nil {
		return "", errors.New("numbering: redis client not configured")
	}
	year := clock{Location: r.Location, Now: r.Now}.year()
	seq, err := r.R.Incr(ctx, r.key(year)).Result()
	if err != nil {
		return "", fmt.Errorf("numbering: incr: %w", err)
	}
	return Format(year, seq), nil
}

// New selects the backend by name ("postgres" or "redis").
func New(backend string, q SequenceQuerier, rdb redis.UniversalClient, loc *time.Location) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "postgres":
		return Postgres{Q: q, Location: loc}, nil
	case "redis":
		return Redis{R: rdb, Location: loc}, nil
	default:
		return nil, fmt.Errorf("numbering: unknown backend %q", backend)
	}
}
