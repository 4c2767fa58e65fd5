package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// Querier is the subset of *pgxpool.Pool used by PostgresGateway.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresGateway reads catalogs straight from the inventory database.
//
// Expected tables:
//
//	products(id, code, name, status)
//	warehouse_stock(product_id, warehouse_id, stock numeric)
//	product_expeditions(id, product_id, warehouse_id, code, status, unit_price numeric)
//
// A product belongs to a warehouse catalog when it has a warehouse_stock row
// for that warehouse.
type PostgresGateway struct {
	db Querier
}

// NewPostgresGateway creates a PostgresGateway using db.
func NewPostgresGateway(db Querier) *PostgresGateway {
	return &PostgresGateway{db: db}
}

const productsByWarehouseSQL = `
SELECT p.id::text, COALESCE(p.code, ''), p.name, p.status, s.stock
FROM products p
JOIN warehouse_stock s ON s.product_id = p.id
WHERE s.warehouse_id::text = $1
ORDER BY p.id`

const expeditionsByWarehouseSQL = `
SELECT e.product_id::text, e.id::text, COALESCE(e.code, ''), e.status, e.unit_price
FROM product_expeditions e
WHERE e.warehouse_id::text = $1
ORDER BY e.product_id, e.id`

type productRow struct {
	ID     string
	Code   string
	Name   string
	Status string
	Stock  pgtype.Numeric
}

type expeditionRow struct {
	ProductID string
	ID        string
	Code      string
	Status    string
	UnitPrice pgtype.Numeric
}

// FetchCatalog implements core.InventoryGateway.
func (g *PostgresGateway) FetchCatalog(ctx context.Context, warehouseID string) ([]core.Product, error) {
	rows, err := g.db.Query(ctx, productsByWarehouseSQL, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByPos[productRow])
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	rows, err = g.db.Query(ctx, expeditionsByWarehouseSQL, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("query expeditions: %w", err)
	}
	expeditions, err := pgx.CollectRows(rows, pgx.RowToStructByPos[expeditionRow])
	if err != nil {
		return nil, fmt.Errorf("scan expeditions: %w", err)
	}

	return assembleCatalog(warehouseID, products, expeditions), nil
}

// assembleCatalog joins product and expedition rows into catalog products.
// Expeditions of products missing from the product rows are dropped.
func assembleCatalog(warehouseID string, products []productRow, expeditions []expeditionRow) []core.Product {
	out := make([]core.Product, len(products))
	index := make(map[string]int, len(products))

	for i, p := range products {
		out[i] = core.Product{
			ID:          p.ID,
			Code:        p.Code,
			Name:        p.Name,
			Status:      p.Status,
			Stocks:      []core.WarehouseStock{{WarehouseID: warehouseID, Stock: numericToFloat(p.Stock)}},
			Expeditions: []core.Expedition{},
		}
		index[p.ID] = i
	}

	for _, e := range expeditions {
		i, ok := index[e.ProductID]
		if !ok {
			continue
		}
		out[i].Expeditions = append(out[i].Expeditions, core.Expedition{
			ID:        e.ID,
			Code:      e.Code,
			Status:    e.Status,
			UnitPrice: numericToFloat(e.UnitPrice),
		})
	}

	return out
}

// numericToFloat converts a NUMERIC column, mapping NULL and NaN to 0.
func numericToFloat(n pgtype.Numeric) float64 {
	if !n.Valid || n.NaN {
		return 0
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0
	}
	return f.Float64
}
