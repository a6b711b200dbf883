package sources

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
)

// jsonlReader implements Reader for newline-delimited JSON submission files.
// Each line is an object of the form {"email": "...", "phoneNumber": "..."}.
type jsonlReader struct{}

func NewJSONLReader() Reader {
	return &jsonlReader{}
}

func (r *jsonlReader) Type() string { return TypeJSONLFile }

func (r *jsonlReader) Read(ctx context.Context, cfg Source) ([]domain.Submission, error) {
	if !strings.EqualFold(cfg.Type, TypeJSONLFile) {
		return nil, fmt.Errorf("jsonl reader received incompatible source type %q", cfg.Type)
	}

	file, err := os.Open(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("open %s submissions file: %w", cfg.ID, err)
	}
	defer file.Close()

	var out []domain.Submission
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var sub domain.Submission
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return nil, fmt.Errorf("%s line %d: decode submission: %w", cfg.ID, line, err)
		}
		out = append(out, sub.Normalize())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s submissions file: %w", cfg.ID, err)
	}

	return out, nil
}
