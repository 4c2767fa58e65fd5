package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// FileGateway serves catalogs from a JSON file on disk. The file holds either
// one product array shared by every warehouse, or an object mapping warehouse
// ids to product arrays. The file is re-read on every fetch so edits apply to
// the next import.
type FileGateway struct {
	path string
}

// NewFileGateway creates a FileGateway reading path.
func NewFileGateway(path string) *FileGateway {
	return &FileGateway{path: path}
}

// FetchCatalog implements core.InventoryGateway.
func (g *FileGateway) FetchCatalog(ctx context.Context, warehouseID string) ([]core.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var byWarehouse map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &byWarehouse); err != nil {
			return nil, fmt.Errorf("decode catalog file %s: %w", g.path, err)
		}
		raw, ok := byWarehouse[warehouseID]
		if !ok {
			return nil, nil
		}
		trimmed = raw
	}

	products, err := core.DecodeCatalog(trimmed)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", g.path, err)
	}
	return products, nil
}
