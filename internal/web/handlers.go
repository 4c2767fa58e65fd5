package web

import (
	"bytes"
	"net/http"

	"github.com/JonMunkholm/orderimport/internal/core"
	"github.com/JonMunkholm/orderimport/internal/web/views"
)

// ImportIDHeader carries the id assigned to an import, for log correlation.
const ImportIDHeader = "X-Import-ID"

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, http.StatusOK, views.UploadForm(r.URL.Query().Get("warehouse_id")))
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Imports   core.ImportLimiterStatus `json:"imports"`
	Inventory string                   `json:"inventory,omitempty"` // circuit breaker state
}

// handleStatus returns the import limiter and inventory breaker state.
// Used for monitoring and to check if the system can accept more imports.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Imports:   s.service.LimiterStatus(),
		Inventory: s.service.InventoryState(),
	})
}

// handleTemplate serves a header-only order file in the requested format.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(core.FileTypeCSV)
	}
	fileType, err := core.DetectFileType(format, "", "")
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	// Buffer so a write failure can still produce an error response.
	var buf bytes.Buffer
	contentType := "text/csv"
	if fileType == core.FileTypeXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = core.WriteTemplateXLSX(&buf)
	} else {
		err = core.WriteTemplateCSV(&buf)
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="orders_template.`+string(fileType)+`"`)
	w.Write(buf.Bytes())
}

// handleImportAPI validates an uploaded order file and returns the
// ImportResult as JSON.
func (s *Server) handleImportAPI(w http.ResponseWriter, r *http.Request) {
	outcome, status, err := s.runImport(w, r)
	if outcome == nil {
		respondError(w, r, err, status)
		return
	}
	writeJSON(w, status, outcome.Result)
}

// handleImportPage is the form-post variant of handleImportAPI and renders
// the result as HTML.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	outcome, status, err := s.runImport(w, r)
	if outcome == nil {
		respondError(w, r, err, status)
		return
	}
	renderHTML(w, r, status, views.ResultPage(outcome.ImportID, outcome.Result))
}

// runImport reads the upload and runs it through the service. A nil outcome
// means the import never started and err explains why.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request) (*core.ImportOutcome, int, error) {
	req, status, err := s.readImportRequest(w, r)
	if err != nil {
		return nil, status, err
	}

	ctx := WithRequestMetadata(r.Context(), r)
	outcome, err := s.service.Import(ctx, req)
	if outcome == nil {
		// Only the limiter rejects before starting.
		return nil, http.StatusServiceUnavailable, err
	}

	w.Header().Set(ImportIDHeader, outcome.ImportID)
	return outcome, importStatus(err), err
}
