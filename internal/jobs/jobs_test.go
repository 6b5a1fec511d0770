package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/events"
	"github.com/noah-isme/backend-orcamento/internal/jobs"
	"github.com/noah-isme/backend-orcamento/internal/quote"
	"github.com/noah-isme/backend-orcamento/internal/storage"
)

const quoteID = "7d0b7a8e-4c36-4d59-9a3b-0c7e3f3d6a11"

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "archive:" + quoteID}, nil
}

func TestArchiveNotifierEnqueuesOnQuoteCreated(t *testing.T) {
	enq := &recordingEnqueuer{}
	n := jobs.ArchiveNotifier{Client: enq, Log: zerolog.Nop()}

	require.NoError(t, n.Notify(context.Background(), dbgen.DomainEvent{Topic: events.TopicKitToggled, Payload: []byte(`{}`)}))
	require.Empty(t, enq.tasks)

	payload, _ := json.Marshal(map[string]any{"quoteId": quoteID, "numero": "ORC-2026-00001"})
	require.NoError(t, n.Notify(context.Background(), dbgen.DomainEvent{Topic: events.TopicQuoteCreated, Payload: payload}))
	require.Len(t, enq.tasks, 1)
	require.Equal(t, jobs.TypeArchiveDocument, enq.tasks[0].Type())
	require.JSONEq(t, `{"quoteId":"`+quoteID+`"}`, string(enq.tasks[0].Payload()))

	enq.err = asynq.ErrTaskIDConflict
	require.NoError(t, n.Notify(context.Background(), dbgen.DomainEvent{Topic: events.TopicQuoteCreated, Payload: payload}))
}

type stubDocuments struct {
	doc quote.Document
	err error
}

func (s stubDocuments) RenderExisting(_ context.Context, id string) (quote.Document, error) {
	if id != quoteID {
		return quote.Document{}, quote.ErrNotFound
	}
	return s.doc, s.err
}

func TestArchiveHandlerStoresDocument(t *testing.T) {
	disk := storage.Disk{Root: t.TempDir()}
	h := jobs.ArchiveHandler{
		Quotes: stubDocuments{doc: quote.Document{FileName: "orcamento_ORC-2026-00001.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")}},
		Store:  disk,
		Log:    zerolog.Nop(),
	}
	task, err := jobs.NewArchiveTask(quoteID)
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))

	rc, err := disk.Open(context.Background(), storage.BucketDocuments, "orcamento_ORC-2026-00001.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.3", string(body))
}

func TestArchiveHandlerSkipsRetryForMissingQuote(t *testing.T) {
	h := jobs.ArchiveHandler{Quotes: stubDocuments{}, Store: storage.Disk{Root: t.TempDir()}, Log: zerolog.Nop()}
	task, err := jobs.NewArchiveTask("00000000-0000-0000-0000-000000000001")
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)

	h.Quotes = stubDocuments{err: quote.ErrRenderFailed}
	task, _ = jobs.NewArchiveTask(quoteID)
	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.False(t, errors.Is(err, asynq.SkipRetry))

	_, err = jobs.NewArchiveTask("")
	require.Error(t, err)
}

type lowStockRows []dbgen.ListLowStockRow

func (l lowStockRows) ListLowStock(context.Context) ([]dbgen.ListLowStockRow, error) {
	return l, nil
}

type recordingEmitter struct {
	topics []string
	ids    []pgtype.UUID
}

func (r *recordingEmitter) Emit(_ context.Context, topic string, id pgtype.UUID, _ any) (dbgen.DomainEvent, error) {
	r.topics = append(r.topics, topic)
	r.ids = append(r.ids, id)
	return dbgen.DomainEvent{Topic: topic, AggregateID: id}, nil
}

func TestLowStockSweepDedupesPerDay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a, err := db.ParseUUID("11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	b, err := db.ParseUUID("22222222-2222-2222-2222-222222222222")
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	emitter := &recordingEmitter{}
	sweep := &jobs.LowStockSweep{
		Q: lowStockRows{
			{ID: a, Codigo: "CH-01", Descricao: "Chapa", Quantidade: 0, QuantidadeMinima: 5},
			{ID: b, Codigo: "TB-02", Descricao: "Tubo", Quantidade: 2, QuantidadeMinima: 2},
		},
		R:      client,
		Events: emitter,
		Now:    func() time.Time { return now },
		Log:    zerolog.Nop(),
	}

	n, err := sweep.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{events.TopicStockLow, events.TopicStockLow}, emitter.topics)
	require.True(t, mr.Exists("stock:low:11111111-1111-1111-1111-111111111111:2026-03-02"))

	n, err = sweep.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	now = now.Add(24 * time.Hour)
	n, err = sweep.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestLowStockSweepSchedule(t *testing.T) {
	c := cron.New()
	sweep := &jobs.LowStockSweep{Log: zerolog.Nop()}
	_, err := sweep.Schedule(c, "0 8 * * *", time.Minute)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	_, err = sweep.Schedule(c, "not a cron line", time.Minute)
	require.Error(t, err)
}
