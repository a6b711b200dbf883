package sources

import (
	"fmt"
	"strings"
	"sync"
)

// readerRegistry implements ReaderRegistry keyed by source type.
type readerRegistry struct {
	readersByType map[string]Reader
	mu            sync.RWMutex
}

// NewReaderRegistry builds a registry for the provided reader implementations.
func NewReaderRegistry(readers ...Reader) ReaderRegistry {
	reg := &readerRegistry{
		readersByType: make(map[string]Reader),
	}
	for _, r := range readers {
		reg.register(r)
	}
	return reg
}

func (r *readerRegistry) register(reader Reader) {
	if reader == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(reader.Type()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.readersByType[key] = reader
	r.mu.Unlock()
}

// ReaderFor selects the reader for the given source based on its type.
func (r *readerRegistry) ReaderFor(cfg Source) (Reader, error) {
	if r == nil {
		return nil, fmt.Errorf("reader registry is nil")
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, fmt.Errorf("source id is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	typeKey := strings.ToLower(strings.TrimSpace(cfg.Type))
	if f, ok := r.readersByType[typeKey]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no reader registered for source %q (type %q)", cfg.ID, cfg.Type)
}

// DefaultReaderRegistry wires up known source readers.
func DefaultReaderRegistry(client HTTPClient) ReaderRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	return NewReaderRegistry(
		NewJSONLReader(),
		NewHTTPPullReader(client),
		NewHTMLPageReader(client),
	)
}
