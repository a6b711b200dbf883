package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
)

// httpPullReader implements Reader for HTTP intake endpoints returning a JSON
// array of pending submissions.
type httpPullReader struct {
	client HTTPClient
}

func NewHTTPPullReader(client HTTPClient) Reader {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &httpPullReader{client: client}
}

func (r *httpPullReader) Type() string { return TypeHTTPPull }

func (r *httpPullReader) Read(ctx context.Context, cfg Source) ([]domain.Submission, error) {
	if !strings.EqualFold(cfg.Type, TypeHTTPPull) {
		return nil, fmt.Errorf("http pull reader received incompatible source type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.Location) == "" {
		return nil, fmt.Errorf("source %q location is empty", cfg.ID)
	}

	raw, err := fetchLocation(ctx, r.client, cfg.Location, cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}

	var subs []domain.Submission
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("decode %s submissions: %w", cfg.ID, err)
	}

	out := make([]domain.Submission, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.Normalize())
	}
	return out, nil
}
