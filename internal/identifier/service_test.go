package identifier

import (
	"context"
	"errors"
	"testing"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
	"github.com/Aryanshaw/bitespeed-client/pkg/bitespeed"
	"github.com/Aryanshaw/bitespeed-client/pkg/publishers"
	"github.com/Aryanshaw/bitespeed-client/pkg/sources"
)

type stubReader struct {
	typ  string
	subs []domain.Submission
	err  error
}

func (r *stubReader) Type() string { return r.typ }
func (r *stubReader) Read(context.Context, sources.Source) ([]domain.Submission, error) {
	return r.subs, r.err
}

type stubIdentifier struct {
	calls []bitespeed.IdentifyRequest
	err   error
}

func (c *stubIdentifier) Identify(_ context.Context, req bitespeed.IdentifyRequest) (*bitespeed.ContactResponse, error) {
	c.calls = append(c.calls, req)
	if c.err != nil {
		return nil, c.err
	}
	return &bitespeed.ContactResponse{Contact: bitespeed.Contact{PrimaryContactID: 7}}, nil
}

type stubFanout struct {
	events []publishers.Event
	err    error
}

func (f *stubFanout) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

type memStore struct {
	marked map[string]bool
}

func newMemStore() *memStore { return &memStore{marked: make(map[string]bool)} }

func (m *memStore) Close() error { return nil }
func (m *memStore) SeenSubmission(id string) (bool, error) {
	return m.marked[id], nil
}
func (m *memStore) MarkSubmission(id string) error {
	m.marked[id] = true
	return nil
}

func testSource() sources.Source {
	return sources.Source{
		ID:             "intake",
		Name:           "Intake",
		Type:           "stub",
		Location:       "x",
		RequestDelayMs: 1,
	}
}

func TestRunIdentifiesAndPublishes(t *testing.T) {
	reader := &stubReader{typ: "stub", subs: []domain.Submission{
		{Email: "a@x.com"},
		{PhoneNumber: "123"},
	}}
	client := &stubIdentifier{}
	fanout := &stubFanout{}
	store := newMemStore()

	svc := NewService(sources.NewReaderRegistry(reader), client, fanout, nil, store)
	if err := svc.Run(context.Background(), []sources.Source{testSource()}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(client.calls) != 2 {
		t.Fatalf("expected 2 identify calls, got %d", len(client.calls))
	}
	if len(fanout.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(fanout.events))
	}
	if fanout.events[0].Contact.PrimaryContactID != 7 {
		t.Fatalf("event missing contact: %#v", fanout.events[0])
	}
	if len(store.marked) != 2 {
		t.Fatalf("expected 2 journal marks, got %d", len(store.marked))
	}
}

func TestRunSkipsInvalidSubmissions(t *testing.T) {
	reader := &stubReader{typ: "stub", subs: []domain.Submission{
		{},
		{Email: "a@x.com"},
	}}
	client := &stubIdentifier{}
	svc := NewService(sources.NewReaderRegistry(reader), client, &stubFanout{}, nil, newMemStore())

	if err := svc.Run(context.Background(), []sources.Source{testSource()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("invalid submission should not reach the client, got %d calls", len(client.calls))
	}
}

func TestRunSkipsJournaledSubmissions(t *testing.T) {
	sub := domain.Submission{Email: "a@x.com"}
	reader := &stubReader{typ: "stub", subs: []domain.Submission{sub}}
	client := &stubIdentifier{}
	store := newMemStore()
	store.marked[sub.Fingerprint()] = true

	svc := NewService(sources.NewReaderRegistry(reader), client, &stubFanout{}, nil, store)
	if err := svc.Run(context.Background(), []sources.Source{testSource()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("journaled submission should be skipped, got %d calls", len(client.calls))
	}
}

func TestRunLeavesFailedSubmissionsUnjournaled(t *testing.T) {
	reader := &stubReader{typ: "stub", subs: []domain.Submission{{Email: "a@x.com"}}}
	client := &stubIdentifier{err: errors.New("identify down")}
	store := newMemStore()

	svc := NewService(sources.NewReaderRegistry(reader), client, &stubFanout{}, nil, store)
	if err := svc.Run(context.Background(), []sources.Source{testSource()}); err != nil {
		t.Fatalf("identify failures are per-submission, Run should not fail: %v", err)
	}
	if len(store.marked) != 0 {
		t.Fatalf("failed submission must stay unjournaled, got %#v", store.marked)
	}
}

func TestRunJoinsSourceErrors(t *testing.T) {
	bad := &stubReader{typ: "bad", err: errors.New("unreachable")}
	good := &stubReader{typ: "good", subs: []domain.Submission{{Email: "a@x.com"}}}
	client := &stubIdentifier{}

	svc := NewService(sources.NewReaderRegistry(bad, good), client, &stubFanout{}, nil, newMemStore())
	err := svc.Run(context.Background(), []sources.Source{
		{ID: "s1", Name: "S1", Type: "bad", Location: "x"},
		{ID: "s2", Name: "S2", Type: "good", Location: "x"},
	})
	if err == nil {
		t.Fatalf("expected joined error from failing source")
	}
	if len(client.calls) != 1 {
		t.Fatalf("healthy source should still run, got %d calls", len(client.calls))
	}
}
