// Package jobs holds background work run by the worker process: archiving
// rendered quote documents and the daily low stock sweep.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/events"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/quote"
	"github.com/noah-isme/backend-orcamento/internal/storage"
)

// TypeArchiveDocument is the asynq task type that renders and stores a quote PDF.
const TypeArchiveDocument = "quote:document:archive"

// QueueDocuments is the asynq queue archive tasks are sent to.
const QueueDocuments = "documents"

// ArchivePayload identifies the quote to archive.
type ArchivePayload struct {
	QuoteID string `json:"quoteId"`
}

// NewArchiveTask builds the task for quoteID. The task id is derived from the
// quote so a replayed event does not archive twice.
func NewArchiveTask(quoteID string) (*asynq.Task, error) {
	if quoteID == "" {
		return nil, errors.New("jobs: quote id is required")
	}
	payload, err := json.Marshal(ArchivePayload{QuoteID: quoteID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeArchiveDocument, payload,
		asynq.TaskID("archive:"+quoteID),
		asynq.Queue(QueueDocuments),
		asynq.MaxRetry(5),
	), nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ArchiveNotifier enqueues an archive task for every quote.created event.
type ArchiveNotifier struct {
	Client Enqueuer
	Log    zerolog.Logger
}

// Notify implements events.Notifier.
func (n ArchiveNotifier) Notify(ctx context.Context, event dbgen.DomainEvent) error {
	if event.Topic != events.TopicQuoteCreated || n.Client == nil {
		return nil
	}
	var body ArchivePayload
	if err := json.Unmarshal(event.Payload, &body); err != nil {
		return fmt.Errorf("decode quote.created payload: %w", err)
	}
	task, err := NewArchiveTask(body.QuoteID)
	if err != nil {
		return err
	}
	info, err := n.Client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue archive: %w", err)
	}
	n.Log.Debug().Str("quote_id", body.QuoteID).Str("task_id", info.ID).Msg("archive task enqueued")
	return nil
}

// DocumentSource renders a stored quote.
type DocumentSource interface {
	RenderExisting(ctx context.Context, id string) (quote.Document, error)
}

// ArchiveHandler processes archive tasks.
type ArchiveHandler struct {
	Quotes DocumentSource
	Store  storage.Store
	Log    zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h ArchiveHandler) ProcessTask(ctx context.Context, t *asynq.Task) (err error) {
	defer func() {
		if obs.DocumentArchiveTotal == nil {
			return
		}
		result := "success"
		if err != nil {
			result = "error"
		}
		obs.DocumentArchiveTotal.WithLabelValues(result).Inc()
	}()

	var p ArchivePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.QuoteID == "" {
		return fmt.Errorf("invalid archive payload: %w", asynq.SkipRetry)
	}
	doc, err := h.Quotes.RenderExisting(ctx, p.QuoteID)
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrNotFound),
			errors.Is(err, quote.ErrInvalidInput),
			errors.Is(err, quote.ErrRenderDataMissing):
			return fmt.Errorf("archive %s: %v: %w", p.QuoteID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("archive %s: %w", p.QuoteID, err)
	}
	url, err := h.Store.Put(ctx, storage.BucketDocuments, doc.FileName, bytes.NewReader(doc.Content), doc.ContentType)
	if err != nil {
		return fmt.Errorf("store %s: %w", doc.FileName, err)
	}
	h.Log.Info().Str("quote_id", p.QuoteID).Str("url", url).Int("bytes", len(doc.Content)).Msg("quote document archived")
	return nil
}
