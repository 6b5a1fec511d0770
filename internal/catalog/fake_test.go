package catalog_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

type fakeQueries struct {
	products  map[uuid.UUID]dbgen.Produto
	stock     map[uuid.UUID]dbgen.Estoque
	listCalls int
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		products: map[uuid.UUID]dbgen.Produto{},
		stock:    map[uuid.UUID]dbgen.Estoque{},
	}
}

func (f *fakeQueries) seed(p dbgen.Produto, qty, minimum int32) dbgen.Produto {
	if !p.ID.Valid {
		p.ID = pgtype.UUID{Bytes: uuid.New(), Valid: true}
	}
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Unidade == "" {
		p.Unidade = "UN"
	}
	f.products[p.ID.Bytes] = p
	f.stock[p.ID.Bytes] = dbgen.Estoque{ProdutoID: p.ID, Quantidade: qty, QuantidadeMinima: minimum}
	return p
}

func (f *fakeQueries) filtered(search pgtype.Text, inStock pgtype.Bool) []dbgen.ListProductsRow {
	var rows []dbgen.ListProductsRow
	for id, p := range f.products {
		st := f.stock[id]
		if search.Valid {
			q := strings.ToLower(search.String)
			if !strings.Contains(strings.ToLower(p.Codigo), q) && !strings.Contains(strings.ToLower(p.Descricao), q) {
				continue
			}
		}
		if inStock.Valid && (st.Quantidade > 0) != inStock.Bool {
			continue
		}
		rows = append(rows, dbgen.ListProductsRow{Produto: p, Quantidade: st.Quantidade, QuantidadeMinima: st.QuantidadeMinima})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Produto.Descricao < rows[j].Produto.Descricao })
	return rows
}

func (f *fakeQueries) CountProducts(_ context.Context, arg dbgen.CountProductsParams) (int64, error) {
	return int64(len(f.filtered(arg.Search, arg.InStock))), nil
}

func (f *fakeQueries) ListProducts(_ context.Context, arg dbgen.ListProductsParams) ([]dbgen.ListProductsRow, error) {
	f.listCalls++
	rows := f.filtered(arg.Search, arg.InStock)
	start := min(int(arg.Offset), len(rows))
	end := min(start+int(arg.Limit), len(rows))
	return rows[start:end], nil
}

func (f *fakeQueries) GetProductByID(_ context.Context, id pgtype.UUID) (dbgen.GetProductByIDRow, error) {
	p, ok := f.products[id.Bytes]
	if !ok {
		return dbgen.GetProductByIDRow{}, pgx.ErrNoRows
	}
	st := f.stock[id.Bytes]
	return dbgen.GetProductByIDRow{Produto: p, Quantidade: st.Quantidade, QuantidadeMinima: st.QuantidadeMinima}, nil
}

func (f *fakeQueries) CreateProduct(_ context.Context, arg dbgen.CreateProductParams) (dbgen.Produto, error) {
	p := f.seed(dbgen.Produto{
		Codigo:      arg.Codigo,
		Descricao:   arg.Descricao,
		Tipo:        arg.Tipo,
		Cor:         arg.Cor,
		Liga:        arg.Liga,
		Peso:        arg.Peso,
		Unidade:     arg.Unidade,
		PrecoCusto:  arg.PrecoCusto,
		PrecoVenda:  arg.PrecoVenda,
		PrecoPorKg:  arg.PrecoPorKg,
		Localizacao: arg.Localizacao,
	}, 0, 0)
	return p, nil
}

func (f *fakeQueries) UpdateProduct(_ context.Context, arg dbgen.UpdateProductParams) (dbgen.Produto, error) {
	p, ok := f.products[arg.ID.Bytes]
	if !ok {
		return dbgen.Produto{}, pgx.ErrNoRows
	}
	p.Codigo, p.Descricao, p.Tipo, p.Cor, p.Liga = arg.Codigo, arg.Descricao, arg.Tipo, arg.Cor, arg.Liga
	p.Peso, p.Unidade, p.PrecoCusto, p.PrecoVenda, p.PrecoPorKg = arg.Peso, arg.Unidade, arg.PrecoCusto, arg.PrecoVenda, arg.PrecoPorKg
	p.Localizacao = arg.Localizacao
	f.products[arg.ID.Bytes] = p
	return p, nil
}

func (f *fakeQueries) DeleteProduct(_ context.Context, id pgtype.UUID) (int64, error) {
	if _, ok := f.products[id.Bytes]; !ok {
		return 0, nil
	}
	delete(f.products, id.Bytes)
	delete(f.stock, id.Bytes)
	return 1, nil
}

func (f *fakeQueries) SetProductPhoto(_ context.Context, arg dbgen.SetProductPhotoParams) (int64, error) {
	p, ok := f.products[arg.ID.Bytes]
	if !ok {
		return 0, nil
	}
	p.FotoUrl = arg.FotoUrl
	f.products[arg.ID.Bytes] = p
	return 1, nil
}

func (f *fakeQueries) SetStock(_ context.Context, arg dbgen.SetStockParams) (dbgen.Estoque, error) {
	st := dbgen.Estoque{ProdutoID: arg.ProdutoID, Quantidade: arg.Quantidade, QuantidadeMinima: arg.QuantidadeMinima}
	f.stock[arg.ProdutoID.Bytes] = st
	return st, nil
}
