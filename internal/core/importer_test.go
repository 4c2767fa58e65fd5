package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockGateway is a testify mock of InventoryGateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) FetchCatalog(ctx context.Context, warehouseID string) ([]Product, error) {
	args := m.Called(ctx, warehouseID)
	products, _ := args.Get(0).([]Product)
	return products, args.Error(1)
}

const headerLine = "ORDER ID,PRODUCT ID,DATE,PRODUCT NAME,PRODUCT LINK,CUSTOMER NAME,PHONE NUMBER,ADDRESS,PRICE,QUANTITY,STORE NAME"

const singleProductRow = "ORD001,PROD001,2024-01-15,Test Product 1,http://x,John Doe,+123,123 Main St,10.99,2,Test Store"

func csvRequest(lines ...string) ImportRequest {
	return ImportRequest{
		FileName:    "orders.csv",
		FileType:    FileTypeCSV,
		Data:        []byte(strings.Join(lines, "\n") + "\n"),
		WarehouseID: testWarehouse,
	}
}

func staticGateway(products ...Product) InventoryGateway {
	return GatewayFunc(func(ctx context.Context, warehouseID string) ([]Product, error) {
		return products, nil
	})
}

func runImport(t *testing.T, gw InventoryGateway, req ImportRequest) (ImportResult, error) {
	t.Helper()
	return NewImporter(gw, nil).Import(context.Background(), req)
}

func TestImport_SingleProductRow(t *testing.T) {
	result, err := runImport(t, staticGateway(approvedProduct("PROD001", 100)), csvRequest(headerLine, singleProductRow))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Message)
	assert.Equal(t, 1, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 0, result.ErrorRows)

	require.Len(t, result.Orders, 1)
	order := result.Orders[0]
	assert.Empty(t, order.Errors)
	require.Len(t, order.Products, 1)
	assert.Equal(t, 10.99, order.Products[0].Price)
	assert.Equal(t, 2.0, order.Products[0].Quantity)
}

func TestImport_MultiProductRow(t *testing.T) {
	row := "ORD001,PROD001|PROD002,2024-01-15,Test Product 1|Test Product 2,http://x,John Doe,+123,123 Main St,10.99|5.50,2|1,Test Store"
	gw := staticGateway(approvedProduct("PROD001", 100), approvedProduct("PROD002", 100))

	result, err := runImport(t, gw, csvRequest(headerLine, row))
	require.NoError(t, err)

	require.Len(t, result.Orders, 1)
	products := result.Orders[0].Products
	require.Len(t, products, 2)
	assert.Equal(t, "PROD002", products[1].ID)
	assert.Equal(t, "Test Product 2", products[1].Name)
	assert.Equal(t, 5.5, products[1].Price)
	assert.Equal(t, 1, result.ValidRows)
}

func TestImport_HeaderMismatchAborts(t *testing.T) {
	gw := &mockGateway{}
	header := strings.Replace(headerLine, "ORDER ID", "INVALID HEADER", 1)

	result, err := runImport(t, gw, csvRequest(header, singleProductRow))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, `Column 1 should be "ORDER ID" but found "INVALID HEADER"`)
	assert.Equal(t, 0, result.TotalRows)
	assert.Equal(t, 0, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)
	assert.Empty(t, result.Orders)
	gw.AssertNotCalled(t, "FetchCatalog", mock.Anything, mock.Anything)
}

func TestImport_InsufficientStockWarns(t *testing.T) {
	row := "ORD001,PROD002,2024-01-15,Test Product 2,http://x,John Doe,+123,123 Main St,5,100,Test Store"

	result, err := runImport(t, staticGateway(approvedProduct("PROD002", 50)), csvRequest(headerLine, row))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 0, result.ErrorRows)
	require.Len(t, result.Orders, 1)
	assert.Empty(t, result.Orders[0].Errors)
	assert.Contains(t, result.Orders[0].Warnings,
		`Product "PROD002" has insufficient stock (available: 50, requested: 100)`)
}

func TestImport_GatewayFailureAborts(t *testing.T) {
	gw := &mockGateway{}
	gw.On("FetchCatalog", mock.Anything, testWarehouse).Return(nil, errors.New("connection refused")).Once()

	result, err := runImport(t, gw, csvRequest(headerLine, singleProductRow))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateway)
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to fetch available products for validation", result.Message)
	assert.Empty(t, result.Orders)
	assert.Equal(t, 0, result.TotalRows)
	gw.AssertExpectations(t)
}

func TestImport_CatalogFetchedOncePerImport(t *testing.T) {
	gw := &mockGateway{}
	gw.On("FetchCatalog", mock.Anything, testWarehouse).
		Return([]Product{approvedProduct("PROD001", 100)}, nil).Once()

	rows := []string{headerLine}
	for i := 0; i < 25; i++ {
		rows = append(rows, singleProductRow)
	}

	result, err := runImport(t, gw, csvRequest(rows...))
	require.NoError(t, err)

	assert.Equal(t, 25, result.TotalRows)
	assert.Equal(t, 25, result.ValidRows)
	gw.AssertNumberOfCalls(t, "FetchCatalog", 1)
}

func TestImport_PipeMismatch(t *testing.T) {
	row := "ORD001,PROD001|PROD002,2024-01-15,Only One,http://x,John Doe,+123,123 Main St,1|2,1|2,Test Store"

	result, err := runImport(t, staticGateway(approvedProduct("PROD001", 100)), csvRequest(headerLine, row))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Orders, 1)
	assert.Empty(t, result.Orders[0].Products)
	assert.Equal(t, []string{msgLengthMismatch}, result.Orders[0].Errors)
}

func TestImport_CountsAddUp(t *testing.T) {
	rows := []string{
		headerLine,
		singleProductRow,
		"ORD002,NOPE,2024-01-15,Ghost,http://x,Jane,+1,Addr,1,1,Store",
		",PROD001,2024-01-15,Test Product 1,http://x,,+1,Addr,1,1,Store",
		"ORD004,PROD001,2024-01-15,Test Product 1,http://x,Jane,+1,Addr,1,500,Store",
	}

	result, err := runImport(t, staticGateway(approvedProduct("PROD001", 100)), csvRequest(rows...))
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, result.TotalRows, result.ValidRows+result.ErrorRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Equal(t, 2, result.ErrorRows)

	// File order is preserved.
	ids := make([]string, len(result.Orders))
	for i, o := range result.Orders {
		ids[i] = o.OrderID
	}
	assert.Equal(t, []string{"ORD001", "ORD002", "", "ORD004"}, ids)
	assert.Len(t, result.Orders[3].Warnings, 1)
}

func TestImport_Boundary(t *testing.T) {
	gw := &mockGateway{}

	tests := []struct {
		name string
		data string
	}{
		{name: "empty file", data: ""},
		{name: "header only", data: headerLine + "\n"},
		{name: "header and blank rows", data: headerLine + "\n\n,,,,,,,,,,\n \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := csvRequest()
			req.Data = []byte(tt.data)

			result, err := runImport(t, gw, req)

			assert.ErrorIs(t, err, ErrInsufficientRows)
			assert.False(t, result.Success)
			assert.Equal(t, MsgInsufficientRows, result.Message)
			assert.Equal(t, 0, result.TotalRows)
			assert.Equal(t, 0, result.ValidRows)
			assert.Equal(t, 0, result.ErrorRows)
			assert.NotNil(t, result.Orders)
		})
	}
	gw.AssertNotCalled(t, "FetchCatalog", mock.Anything, mock.Anything)
}

func TestImport_ReadFailure(t *testing.T) {
	tests := []struct {
		name string
		req  ImportRequest
	}{
		{
			name: "corrupt workbook",
			req:  ImportRequest{FileName: "orders.xlsx", FileType: FileTypeXLSX, Data: []byte("not a zip")},
		},
		{
			name: "unknown type",
			req:  ImportRequest{FileName: "orders.pdf", FileType: "pdf", Data: []byte("%PDF")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runImport(t, staticGateway(), tt.req)

			assert.ErrorIs(t, err, ErrRead)
			assert.False(t, result.Success)
			assert.Equal(t, MsgReadFailed, result.Message)
			assert.Equal(t, 0, result.TotalRows)
		})
	}
}

func TestImport_FormatIndependence(t *testing.T) {
	rows := [][]string{
		HeaderNames(),
		{"ORD001", "PROD001|PROD002", "2024-01-15", "Widget|Gadget", "http://x", "John Doe", "+123", "123 Main St", "10.99|3", "2|80", "Test Store"},
		{},
		{"ORD002", "MISSING", "2024-01-16", "Nothing", "http://y", "", "+456", "1 Side St", "abc", "1", "Other Store"},
		{"", "", "", "", "", "", "", "", "", "", ""},
	}
	gw := staticGateway(approvedProduct("PROD001", 100), approvedProduct("PROD002", 50))

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, ",")
	}
	csvResult, err := runImport(t, gw, csvRequest(lines...))
	require.NoError(t, err)

	xlsxReq := ImportRequest{
		FileName:    "orders.xlsx",
		FileType:    FileTypeXLSX,
		Data:        buildWorkbook(t, rows),
		WarehouseID: testWarehouse,
	}
	xlsxResult, err := runImport(t, gw, xlsxReq)
	require.NoError(t, err)

	assert.Equal(t, csvResult, xlsxResult)
	assert.Equal(t, 2, csvResult.TotalRows)
	assert.Equal(t, 1, csvResult.ValidRows)
	assert.Equal(t, 1, csvResult.ErrorRows)
}

func TestImport_Idempotent(t *testing.T) {
	rows := []string{
		headerLine,
		singleProductRow,
		"ORD002,PROD001|X,2024-01-15,A|B,http://x,Jane,+1,Addr,1|2,1|1,Store",
	}
	gw := staticGateway(approvedProduct("PROD001", 100))
	req := csvRequest(rows...)

	first, err1 := runImport(t, gw, req)
	second, err2 := runImport(t, gw, req)

	assert.Equal(t, err1, err2)
	assert.Equal(t, first, second)
}

func TestGuardRow_RecoversPanic(t *testing.T) {
	rec := recordWith()

	guardRow(&rec, func() { panic("boom") })

	assert.Equal(t, []string{"Unexpected error while processing row: boom"}, rec.Errors)
	assert.False(t, rec.Valid())
}

func TestImport_RowPanicIsContained(t *testing.T) {
	im := NewImporter(staticGateway(approvedProduct("PROD001", 100)), nil)
	im.normalize = func(row []string) OrderRecord {
		if cellAt(row, ColOrderID) == "ORD002" {
			panic("bad row")
		}
		return NormalizeRow(row)
	}

	req := csvRequest(headerLine, singleProductRow,
		"ORD002,PROD001,2024-01-15,Test Product 1,http://x,Jane,+1,Addr,1,1,Store")
	result, err := im.Import(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	assert.True(t, result.Orders[0].Valid())
	assert.Equal(t, "ORD002", result.Orders[1].OrderID)
	assert.Equal(t, []string{"Unexpected error while processing row: bad row"}, result.Orders[1].Errors)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)
}
