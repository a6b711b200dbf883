package sources

import (
	"context"
	"time"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
	"github.com/Aryanshaw/bitespeed-client/pkg/httpclient"
)

// Reader retrieves pending submissions for a source.
// Concrete implementations live in type-specific files (e.g., jsonl.go).
type Reader interface {
	Type() string
	Read(ctx context.Context, cfg Source) ([]domain.Submission, error)
}

// ReaderRegistry resolves the reader implementation for a given source config.
type ReaderRegistry interface {
	ReaderFor(cfg Source) (Reader, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client

// DefaultHTTPClient returns a tuned HTTP client for source readers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }
