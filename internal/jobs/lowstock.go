package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/events"
	"github.com/noah-isme/backend-orcamento/internal/obs"
)

// LowStockQuerier lists products at or below their minimum quantity.
type LowStockQuerier interface {
	ListLowStock(ctx context.Context) ([]dbgen.ListLowStockRow, error)
}

// EventEmitter records domain events.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (dbgen.DomainEvent, error)
}

// LowStockSweep emits stock.low at most once per product per day.
type LowStockSweep struct {
	Q        LowStockQuerier
	R        redis.UniversalClient
	Events   EventEmitter
	Location *time.Location
	Now      func() time.Time
	Log      zerolog.Logger
}

func (s *LowStockSweep) today() string {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

// Run performs one sweep and reports how many alerts were emitted.
func (s *LowStockSweep) Run(ctx context.Context) (int, error) {
	rows, err := s.Q.ListLowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("list low stock: %w", err)
	}
	day := s.today()
	emitted := 0
	for _, row := range rows {
		key := fmt.Sprintf("stock:low:%s:%s", db.UUIDString(row.ID), day)
		fresh, err := s.R.SetNX(ctx, key, row.Quantidade, 36*time.Hour).Result()
		if err != nil {
			return emitted, fmt.Errorf("dedupe %s: %w", row.Codigo, err)
		}
		if !fresh {
			continue
		}
		payload := map[string]any{
			"produtoId":        db.UUIDString(row.ID),
			"codigo":           row.Codigo,
			"descricao":        row.Descricao,
			"quantidade":       row.Quantidade,
			"quantidadeMinima": row.QuantidadeMinima,
		}
		if _, err := s.Events.Emit(ctx, events.TopicStockLow, row.ID, payload); err != nil {
			s.R.Del(ctx, key)
			return emitted, fmt.Errorf("emit stock.low for %s: %w", row.Codigo, err)
		}
		emitted++
		if obs.LowStockAlertsTotal != nil {
			obs.LowStockAlertsTotal.Inc()
		}
	}
	return emitted, nil
}

// Schedule registers the sweep on c using a standard five field cron expression.
func (s *LowStockSweep) Schedule(c *cron.Cron, expr string, timeout time.Duration) (cron.EntryID, error) {
	return c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := s.Run(ctx)
		if err != nil {
			s.Log.Error().Err(err).Int("emitted", n).Msg("low stock sweep failed")
			return
		}
		s.Log.Info().Int("emitted", n).Msg("low stock sweep finished")
	})
}
