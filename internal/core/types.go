package core

import "context"

// RawTable is the decoded cell grid of an order file. Row 0 is the header.
// It is built once per import and never modified afterwards.
type RawTable [][]string

// FileType selects the decoding strategy for an uploaded file.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// Column positions inside a data row. The order matches HeaderSchema.
const (
	ColOrderID = iota
	ColProductID
	ColDate
	ColProductName
	ColProductLink
	ColCustomerName
	ColPhoneNumber
	ColAddress
	ColPrice
	ColQuantity
	ColStoreName

	columnCount
)

// FieldSpec describes a single column of the order file.
type FieldSpec struct {
	Name     string // Header text (must match exactly)
	Multi    bool   // Holds pipe-separated values, one per product line
	Required bool   // Must be non-empty on every data row
}

// HeaderSchema is the fixed, order-sensitive column layout of an order file.
var HeaderSchema = [columnCount]FieldSpec{
	ColOrderID:      {Name: "ORDER ID", Required: true},
	ColProductID:    {Name: "PRODUCT ID", Multi: true},
	ColDate:         {Name: "DATE"},
	ColProductName:  {Name: "PRODUCT NAME", Multi: true},
	ColProductLink:  {Name: "PRODUCT LINK"},
	ColCustomerName: {Name: "CUSTOMER NAME", Required: true},
	ColPhoneNumber:  {Name: "PHONE NUMBER"},
	ColAddress:      {Name: "ADDRESS"},
	ColPrice:        {Name: "PRICE", Multi: true},
	ColQuantity:     {Name: "QUANTITY", Multi: true},
	ColStoreName:    {Name: "STORE NAME"},
}

// HeaderNames returns the expected header row in column order.
func HeaderNames() []string {
	names := make([]string, len(HeaderSchema))
	for i, col := range HeaderSchema {
		names[i] = col.Name
	}
	return names
}

// ProductLine is one product within an order.
type ProductLine struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	RawPrice    string  `json:"-"`
	RawQuantity string  `json:"-"`

	priceOK    bool
	quantityOK bool
}

// Customer holds the buyer fields of an order row.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderRecord is one order extracted from one data row, with its diagnostics.
type OrderRecord struct {
	OrderID     string        `json:"orderId"`
	Date        string        `json:"date"`
	Customer    Customer      `json:"customer"`
	ProductLink string        `json:"productLink"`
	StoreName   string        `json:"storeName"`
	Products    []ProductLine `json:"products"`
	Errors      []string      `json:"errors"`
	Warnings    []string      `json:"warnings"`
}

// Valid reports whether the record carries no blocking errors.
// Warnings do not affect validity.
func (o *OrderRecord) Valid() bool {
	return len(o.Errors) == 0
}

func (o *OrderRecord) addError(msg string) {
	o.Errors = append(o.Errors, msg)
}

func (o *OrderRecord) addWarning(msg string) {
	o.Warnings = append(o.Warnings, msg)
}

// ImportResult is the outcome of one import call.
type ImportResult struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	TotalRows int           `json:"totalRows"`
	ValidRows int           `json:"validRows"`
	ErrorRows int           `json:"errorRows"`
	Orders    []OrderRecord `json:"orders"`
}

// ImportRequest is the input of one import call.
type ImportRequest struct {
	FileName    string
	FileType    FileType
	Data        []byte
	WarehouseID string
}

// InventoryGateway fetches the product catalog for a warehouse.
// Implementations should honor ctx cancellation; the session scoping the call
// is available through SessionFromContext.
type InventoryGateway interface {
	FetchCatalog(ctx context.Context, warehouseID string) ([]Product, error)
}

// GatewayFunc adapts a function to the InventoryGateway interface.
type GatewayFunc func(ctx context.Context, warehouseID string) ([]Product, error)

// FetchCatalog implements InventoryGateway.
func (f GatewayFunc) FetchCatalog(ctx context.Context, warehouseID string) ([]Product, error) {
	return f(ctx, warehouseID)
}
