package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExpeditionApproved is the status an expedition must carry to be usable.
const ExpeditionApproved = "approved"

// WarehouseStock is the stock level of a product in one warehouse.
type WarehouseStock struct {
	WarehouseID string  `json:"warehouseId"`
	Stock       float64 `json:"stock"`
}

// Expedition is a shipping option offered for a product.
type Expedition struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	Status    string  `json:"status"`
	UnitPrice float64 `json:"unitPrice"`
}

// Approved reports whether the expedition may be used for new orders.
func (e Expedition) Approved() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), ExpeditionApproved)
}

// Product is a catalog entry returned by the inventory gateway.
type Product struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	Stocks      []WarehouseStock `json:"stocks"`
	Expeditions []Expedition     `json:"expeditions"`
}

// HasApprovedExpedition reports whether at least one expedition is approved.
func (p *Product) HasApprovedExpedition() bool {
	for _, e := range p.Expeditions {
		if e.Approved() {
			return true
		}
	}
	return false
}

// StockIn returns the stock for warehouseID, or 0 when the product has no
// entry for that warehouse.
func (p *Product) StockIn(warehouseID string) float64 {
	for _, s := range p.Stocks {
		if s.WarehouseID == warehouseID {
			return s.Stock
		}
	}
	return 0
}

// Catalog is a read-only snapshot of products indexed by id and code.
// It is built once per import and shared by every row of that import.
type Catalog struct {
	warehouseID string
	byKey       map[string]*Product
}

// NewCatalog indexes products for lookup. Ids take precedence over codes when
// both collide.
func NewCatalog(warehouseID string, products []Product) *Catalog {
	c := &Catalog{
		warehouseID: warehouseID,
		byKey:       make(map[string]*Product, len(products)*2),
	}
	for i := range products {
		p := &products[i]
		if p.Code != "" {
			if _, taken := c.byKey[p.Code]; !taken {
				c.byKey[p.Code] = p
			}
		}
	}
	for i := range products {
		p := &products[i]
		if p.ID != "" {
			c.byKey[p.ID] = p
		}
	}
	return c
}

// WarehouseID returns the warehouse the snapshot was fetched for.
func (c *Catalog) WarehouseID() string {
	return c.warehouseID
}

// Lookup finds a product by id or code.
func (c *Catalog) Lookup(key string) (*Product, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	p, ok := c.byKey[key]
	return p, ok
}

// Len returns the number of distinct lookup keys.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byKey)
}

// DecodeCatalog parses a gateway payload. Anything other than a JSON array
// (an object, null, a string) is treated as an empty catalog. Malformed JSON
// is an error.
func DecodeCatalog(data []byte) ([]Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("decode catalog: malformed JSON")
	}
	if trimmed[0] != '[' {
		return nil, nil
	}

	var products []Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}
