package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/orderimport/internal/config"
	"github.com/JonMunkholm/orderimport/internal/core"
)

const (
	testWarehouse = "WH-1"
	headerLine    = "ORDER ID,PRODUCT ID,DATE,PRODUCT NAME,PRODUCT LINK,CUSTOMER NAME,PHONE NUMBER,ADDRESS,PRICE,QUANTITY,STORE NAME"
	validRow      = "ORD001,PROD001,2024-01-15,Test Product 1,http://x,John Doe,+123,123 Main St,10.99,2,Test Store"
	unknownRow    = "ORD002,NOPE,2024-01-15,Ghost,http://x,Jane Roe,+123,1 Side St,5,1,Test Store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   50 * time.Millisecond,
			Timeout:       5 * time.Second,
		},
		Rate:     config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func catalogGateway() core.InventoryGateway {
	return core.GatewayFunc(func(ctx context.Context, warehouseID string) ([]core.Product, error) {
		return []core.Product{{
			ID:          "PROD001",
			Name:        "Test Product 1",
			Stocks:      []core.WarehouseStock{{WarehouseID: testWarehouse, Stock: 100}},
			Expeditions: []core.Expedition{{ID: "E1", Status: "approved"}},
		}}, nil
	})
}

func newTestServer(t *testing.T, gw core.InventoryGateway, mutate func(*config.Config)) (*Server, *core.Metrics) {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	metrics := core.NewMetrics()
	svc := core.NewService(gw, core.ServiceConfig{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	}, metrics)
	return NewServer(svc, metrics, cfg), metrics
}

type uploadForm struct {
	fileName    string
	content     string
	warehouseID string
	fileType    string
	omitFile    bool
}

func newUpload(t *testing.T, path string, f uploadForm) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if !f.omitFile {
		part, err := mw.CreateFormFile("file", f.fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	if f.warehouseID != "" {
		require.NoError(t, mw.WriteField("warehouse_id", f.warehouseID))
	}
	if f.fileType != "" {
		require.NoError(t, mw.WriteField("file_type", f.fileType))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func csvUpload(rows ...string) uploadForm {
	return uploadForm{
		fileName:    "orders.csv",
		content:     strings.Join(append([]string{headerLine}, rows...), "\n") + "\n",
		warehouseID: testWarehouse,
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) core.ImportResult {
	t.Helper()
	var result core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestImportAPI_Success(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	rec := serve(s, newUpload(t, "/api/orders/import", csvUpload(validRow, unknownRow)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(ImportIDHeader))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	result := decodeResult(t, rec)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Orders, 2)
	assert.NotEmpty(t, result.Orders[1].Errors)
}

func TestImportAPI_ForwardsSessionToGateway(t *testing.T) {
	var gotSession, gotWarehouse string
	gw := core.GatewayFunc(func(ctx context.Context, warehouseID string) ([]core.Product, error) {
		gotSession = core.SessionFromContext(ctx)
		gotWarehouse = warehouseID
		return nil, nil
	})
	s, _ := newTestServer(t, gw, nil)

	req := newUpload(t, "/api/orders/import", csvUpload(validRow))
	req.Header.Set("Authorization", "Bearer seller-token")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "seller-token", gotSession)
	assert.Equal(t, testWarehouse, gotWarehouse)
}

func TestImportAPI_FileLevelFailures(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantMessage string
	}{
		{name: "header only", content: headerLine + "\n", wantMessage: core.MsgInsufficientRows},
		{name: "wrong header", content: "ORDER,PRODUCT ID\n" + validRow + "\n", wantMessage: "ORDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, catalogGateway(), nil)
			form := csvUpload()
			form.content = tt.content

			rec := serve(s, newUpload(t, "/api/orders/import", form))

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(ImportIDHeader))
			result := decodeResult(t, rec)
			assert.False(t, result.Success)
			assert.Contains(t, result.Message, tt.wantMessage)
			assert.Empty(t, result.Orders)
		})
	}
}

func TestImportAPI_GatewayFailure(t *testing.T) {
	gw := core.GatewayFunc(func(ctx context.Context, warehouseID string) ([]core.Product, error) {
		return nil, errors.New("connection refused")
	})
	s, _ := newTestServer(t, gw, nil)

	rec := serve(s, newUpload(t, "/api/orders/import", csvUpload(validRow)))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	result := decodeResult(t, rec)
	assert.False(t, result.Success)
	assert.Equal(t, core.MsgGatewayFailed, result.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	metricsRec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsRec.Body.String(), "orderimport_gateway_errors_total 1")
}

func TestImportAPI_RequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		form     uploadForm
		wantCode int
		wantErr  string
	}{
		{name: "no file", form: uploadForm{warehouseID: testWarehouse, omitFile: true}, wantCode: http.StatusBadRequest, wantErr: "FILE004"},
		{name: "no warehouse", form: uploadForm{fileName: "orders.csv", content: headerLine}, wantCode: http.StatusBadRequest, wantErr: "UPL001"},
		{name: "unknown type", form: uploadForm{fileName: "orders.pdf", content: "x", warehouseID: testWarehouse}, wantCode: http.StatusBadRequest, wantErr: "FILE003"},
		{name: "bad declared type", form: uploadForm{fileName: "orders.csv", content: "x", warehouseID: testWarehouse, fileType: "json"}, wantCode: http.StatusBadRequest, wantErr: "FILE003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, catalogGateway(), nil)
			rec := serve(s, newUpload(t, "/api/orders/import", tt.form))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body.Code)
			assert.Empty(t, rec.Header().Get(ImportIDHeader))
		})
	}
}

func TestImportAPI_FileTooLarge(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), func(c *config.Config) { c.Upload.MaxFileSize = 64 })

	form := csvUpload(validRow, validRow, validRow)
	rec := serve(s, newUpload(t, "/api/orders/import", form))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE001")
}

func TestImportAPI_Busy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := core.GatewayFunc(func(ctx context.Context, warehouseID string) ([]core.Product, error) {
		close(entered)
		<-release
		return nil, nil
	})
	s, _ := newTestServer(t, gw, func(c *config.Config) { c.Upload.MaxConcurrent = 1 })

	var wg sync.WaitGroup
	wg.Add(1)
	var first *httptest.ResponseRecorder
	go func() {
		defer wg.Done()
		first = serve(s, newUpload(t, "/api/orders/import", csvUpload(validRow)))
	}()
	<-entered

	second := serve(s, newUpload(t, "/api/orders/import", csvUpload(validRow)))
	close(release)
	wg.Wait()

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusServiceUnavailable, second.Code)
	assert.Contains(t, second.Body.String(), "UPL002")
	assert.Empty(t, second.Header().Get(ImportIDHeader))
}

func TestImportPage_RendersResult(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	rec := serve(s, newUpload(t, "/import", csvUpload(validRow)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Import validated")
	assert.Contains(t, rec.Body.String(), "ORD001")
}

func TestImportPage_RequestErrorIsHTML(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	rec := serve(s, newUpload(t, "/import", uploadForm{warehouseID: testWarehouse, omitFile: true}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "FILE004")
}

func TestImportPage_HTMXGetsPartial(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	req := newUpload(t, "/import", uploadForm{warehouseID: testWarehouse, omitFile: true})
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/?warehouse_id=WH-7", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="WH-7"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestTemplateDownload(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/orders/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "orders_template.csv")
	assert.Equal(t, headerLine+"\n", rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/orders/template?format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "orders_template.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/orders/template?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusAndHealth(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Imports.MaxConcurrent)
	assert.Equal(t, 2, status.Imports.Available)
	assert.Empty(t, status.Inventory)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRequiresKeyWhenConfigured(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The HTML form is not behind the key.
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadRateLimit(t *testing.T) {
	s, _ := newTestServer(t, catalogGateway(), func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, UploadLimit: 1, MaxClients: 10}
	})

	first := serve(s, newUpload(t, "/api/orders/import", csvUpload(validRow)))
	second := serve(s, newUpload(t, "/api/orders/import", csvUpload(validRow)))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE001")

	// Other routes use the general budget.
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := newRateLimiter(2, 10)

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"))
}

func TestImportStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, importStatus(nil))
	assert.Equal(t, http.StatusUnprocessableEntity, importStatus(core.ErrRead))
	assert.Equal(t, http.StatusUnprocessableEntity, importStatus(core.ErrHeaderMismatch))
	assert.Equal(t, http.StatusBadGateway, importStatus(core.ErrGateway))
	assert.Equal(t, http.StatusInternalServerError, importStatus(errors.New("boom")))
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, sessionToken(req))

	req.Header.Set("X-Session-Token", " abc ")
	assert.Equal(t, "abc", sessionToken(req))

	req.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "xyz", sessionToken(req))
}
