package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	raw := `
sources:
  - id: intake1
    name: Intake One
    type: jsonl_file
    location: ./data/intake1.jsonl
    enabled: false
  - id: intake2
    name: Intake Two
    type: http_pull
    location: https://example.com/pending
    enabled: true
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "intake2" {
		t.Fatalf("expected only intake2 enabled, got %#v", enabled)
	}
	if _, ok := reg.ByID("intake1"); !ok {
		t.Fatalf("disabled sources should still resolve by id")
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	raw := `
sources:
  - id: dup
    name: A
    type: jsonl_file
    location: ./a.jsonl
  - id: dup
    name: B
    type: jsonl_file
    location: ./b.jsonl
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidateSourceRejectsMissingLocation(t *testing.T) {
	err := validateSource(Source{ID: "s1", Name: "S1", Type: TypeJSONLFile})
	if err == nil {
		t.Fatalf("expected validation error for missing location")
	}
}

func TestReaderRegistryResolvesByType(t *testing.T) {
	reg := DefaultReaderRegistry(nil)

	reader, err := reg.ReaderFor(Source{ID: "s1", Type: TypeHTMLPage})
	if err != nil {
		t.Fatalf("ReaderFor: %v", err)
	}
	if reader.Type() != TypeHTMLPage {
		t.Fatalf("resolved wrong reader type %q", reader.Type())
	}

	if _, err := reg.ReaderFor(Source{ID: "s2", Type: "carrier_pigeon"}); err == nil {
		t.Fatalf("expected error for unknown source type")
	}
}
