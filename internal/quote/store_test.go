package quote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/lock"
	"github.com/noah-isme/backend-orcamento/internal/quote"
)

func newStore(t *testing.T) (*quote.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &quote.SessionStore{
		R:      client,
		TTL:    time.Hour,
		Locker: lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond, MaxWait: time.Second},
	}, mr
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sess.Quantity)
	require.Equal(t, time.Hour, mr.TTL("quote:session:"+sess.ID))

	_, err = store.Mutate(ctx, sess.ID, func(s *quote.Session) error {
		s.SetCustomer("c1")
		return s.Add(p2(), 2)
	})
	require.NoError(t, err)

	loaded, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "c1", loaded.CustomerID)
	require.Len(t, loaded.Lines, 1)
	require.Equal(t, "5.00", loaded.Lines[0].UnitPrice.StringFixed(2))
	require.Equal(t, "4", loaded.Lines[0].Weight.Decimal.String())
	require.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Load(ctx, sess.ID)
	require.ErrorIs(t, err, quote.ErrNotFound)
}

func TestSessionStoreRejectsMalformedID(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, quote.ErrInvalidInput)
}

func TestSessionStoreMutateErrorSkipsSave(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	sess, err := store.Create(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Mutate(ctx, sess.ID, func(s *quote.Session) error {
		s.SetNotes("should not persist")
		return boom
	})
	require.ErrorIs(t, err, boom)

	loaded, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Empty(t, loaded.Notes)
}

func TestSessionStoreMutateBusySession(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, mr.Set(lock.Key("quote-session", sess.ID), "someone-else"))
	store.Locker = lock.Locker{R: store.R, RetryBackoff: 5 * time.Millisecond, MaxWait: 30 * time.Millisecond}

	_, err = store.Mutate(ctx, sess.ID, func(*quote.Session) error { return nil })
	require.ErrorIs(t, err, lock.ErrTimeout)
}

func TestSessionStoreMutateContextEndsBeforeLease(t *testing.T) {
	store, _ := newStore(t)
	store.LockTTL = 400 * time.Millisecond
	ctx := context.Background()
	sess, err := store.Create(ctx)
	require.NoError(t, err)

	start := time.Now()
	_, err = store.MutateContext(ctx, sess.ID, func(ctx context.Context, s *quote.Session) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		require.LessOrEqual(t, deadline.Sub(start), 300*time.Millisecond)
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
