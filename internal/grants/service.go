package grants

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

// DefaultImportTimeout bounds one import transaction when Options leaves it unset.
const DefaultImportTimeout = 5 * time.Minute

// Options configures a Service.
type Options struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
}

// Service is the entry point used by the HTTP handlers and the CLI.
type Service struct {
	store    Store
	importer *Importer
	limiter  *ImportLimiter
	timeout  time.Duration
}

// NewService creates a Service over store.
func NewService(store Store, opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:    store,
		importer: NewImporter(store),
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		timeout:  timeout,
	}
}

// ImportFile parses the workbook in r and imports it as actor.
//
// The file is parsed before an import slot is taken, so unreadable or
// unsupported files fail fast. Returns ErrTooManyImports when no slot frees
// up in time.
func (s *Service) ImportFile(ctx context.Context, r io.Reader, filename, actor string) (ImportResult, error) {
	sheets, err := workbook.Read(r, filename)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read %s: %w", filename, err)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.importer.Import(ctx, ImportRequest{
		FileName: filename,
		Actor:    actor,
		Sheets:   sheets,
	})
}

// ListGrants returns grants with their items.
func (s *Service) ListGrants(ctx context.Context, filter GrantFilter) ([]GrantWithItems, error) {
	return s.store.ListGrants(ctx, filter)
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Limiter exposes the import limiter for health output and shutdown drain.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}
