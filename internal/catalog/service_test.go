package catalog_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

func TestDefaultListIsCachedAndInvalidatedOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := newFakeQueries()
	q.seed(dbgen.Produto{Codigo: "A", Descricao: "A", PrecoVenda: db.Numeric(decimal.NewFromInt(5))}, 1, 0)
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: q, Cache: catalog.NewCache(client, time.Minute)})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.List(ctx, catalog.ListParams{})
	require.NoError(t, err)
	_, err = svc.List(ctx, catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, q.listCalls)
	require.True(t, mr.Exists("catalog:products:list:default"))

	_, err = svc.Create(ctx, catalog.RawProduct{Code: "B", Description: "B", ListPrice: "7"})
	require.NoError(t, err)
	require.False(t, mr.Exists("catalog:products:list:default"))

	res, err := svc.List(ctx, catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Total)
	require.Equal(t, 2, q.listCalls)
}

func TestProductForQuoteReadsThrough(t *testing.T) {
	q := newFakeQueries()
	p := q.seed(dbgen.Produto{
		Codigo:     "P2",
		Descricao:  "Perfil",
		PrecoVenda: db.Numeric(decimal.RequireFromString("20.00")),
		Peso:       db.Numeric(decimal.RequireFromString("4")),
	}, 3, 0)
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: q})
	require.NoError(t, err)

	snap, err := svc.ProductForQuote(context.Background(), db.UUIDString(p.ID))
	require.NoError(t, err)
	require.Equal(t, 3, snap.Stock)
	require.True(t, snap.Weight.Valid)
	require.Equal(t, "Perfil", snap.Description)

	_, err = svc.ProductForQuote(context.Background(), "00000000-0000-0000-0000-000000000001")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLooseUnmarshal(t *testing.T) {
	var payload struct {
		A catalog.Loose `json:"a"`
		B catalog.Loose `json:"b"`
		C catalog.Loose `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.50,"b":" 3,2 ","c":null}`), &payload))
	require.Equal(t, catalog.Loose("12.50"), payload.A)
	require.Equal(t, catalog.Loose("3,2"), payload.B)
	require.Equal(t, catalog.Loose(""), payload.C)

	require.Error(t, json.Unmarshal([]byte(`{"a":true}`), &payload))
}
