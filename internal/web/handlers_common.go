package web

// Shared helpers for the import handlers.

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/orderimport/internal/core"
)

// readImportRequest extracts an ImportRequest from a multipart upload with
// fields file, warehouse_id and an optional file_type. The returned status
// is the one to use when err is non-nil.
func (s *Server) readImportRequest(w http.ResponseWriter, r *http.Request) (core.ImportRequest, int, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return core.ImportRequest{}, http.StatusRequestEntityTooLarge, errFileTooLarge
		}
		return core.ImportRequest{}, http.StatusBadRequest, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.ImportRequest{}, http.StatusBadRequest, errNoFile
	}
	defer file.Close()

	warehouseID := strings.TrimSpace(r.FormValue("warehouse_id"))
	if warehouseID == "" {
		return core.ImportRequest{}, http.StatusBadRequest, errMissingWarehouse
	}

	fileType, err := core.DetectFileType(r.FormValue("file_type"), header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		return core.ImportRequest{}, http.StatusBadRequest, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return core.ImportRequest{}, http.StatusBadRequest, fmt.Errorf("read upload: %w", err)
	}

	return core.ImportRequest{
		FileName:    header.Filename,
		FileType:    fileType,
		Data:        data,
		WarehouseID: warehouseID,
	}, http.StatusOK, nil
}

// importStatus maps the error of a finished import to a response status.
func importStatus(err error) int {
	switch core.KindOf(err) {
	case "":
		if err != nil {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	case core.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// renderHTML writes a templ component with the given status.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}
