package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/orderimport/internal/logging"
)

// DefaultImportTimeout is the maximum duration of one import when the
// service is built without an explicit timeout.
const DefaultImportTimeout = 2 * time.Minute

// ServiceConfig holds the service tunables.
type ServiceConfig struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
}

// Service is the entry point used by transports. It wraps the Importer with
// concurrency limiting, a per-import deadline, logging, and metrics.
type Service struct {
	gateway InventoryGateway
	limiter *ImportLimiter
	metrics *Metrics
	timeout time.Duration
}

// ImportOutcome is an ImportResult plus the id assigned to the import.
type ImportOutcome struct {
	ImportID string
	Result   ImportResult
	Duration time.Duration
}

// NewService creates a Service. metrics may be nil.
func NewService(gateway InventoryGateway, cfg ServiceConfig, metrics *Metrics) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		gateway: gateway,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		metrics: metrics,
		timeout: timeout,
	}
}

// Import runs one import under the concurrency limit.
//
// It returns ErrTooManyImports (or ctx.Err()) without touching the file when
// no slot frees up in time. Otherwise the outcome is always populated and the
// error, if any, is the *ImportError that aborted the import.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportOutcome, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.IncBusy()
		return nil, err
	}
	defer s.limiter.Release()

	importID := uuid.New().String()
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"file", req.FileName,
		"file_type", req.FileType,
		"warehouse_id", req.WarehouseID,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("ip", ip)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	logger.Info("import started", "bytes", len(req.Data))

	result, err := NewImporter(s.gateway, logger).Import(ctx, req)
	elapsed := time.Since(start)

	s.metrics.ObserveImport(result, err, elapsed)
	logger.Info("import finished",
		"success", result.Success,
		"total_rows", result.TotalRows,
		"valid_rows", result.ValidRows,
		"error_rows", result.ErrorRows,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &ImportOutcome{ImportID: importID, Result: result, Duration: elapsed}, err
}

// LimiterStatus returns the current import concurrency state.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// InventoryState returns the circuit breaker state of the gateway, or ""
// when the gateway has no breaker.
func (s *Service) InventoryState() string {
	if b, ok := s.gateway.(interface{ BreakerState() string }); ok {
		return b.BreakerState()
	}
	return ""
}
