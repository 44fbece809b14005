package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/errors"
)

func TestCatalogValidateCommand(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		doc     string
		wantErr errors.Code
	}{
		{"valid", `{"tiers":[{"name":"micro","scale":0.2,"count":5,"min_distance":20}]}`, ""},
		{"defaults", `{"margin":25}`, ""},
		{"bad scale", `{"tiers":[{"name":"micro","scale":0,"count":5,"min_distance":20}]}`, errors.ErrCodeInvalidTier},
		{"duplicate", `{"tiers":[{"name":"a","scale":1,"count":1,"min_distance":5},{"name":"a","scale":1,"count":1,"min_distance":5}]}`, errors.ErrCodeInvalidTier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, "")
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := runCLI(t, "catalog", "validate", path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want code %s", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogValidateMissingFile(t *testing.T) {
	writeConfig(t, "")
	if _, err := runCLI(t, "catalog", "validate", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for a missing catalog")
	}
}

func TestCatalogTable(t *testing.T) {
	out := catalogTable(catalog.Default())
	for _, want := range []string{"TIER", "micro", "super", "超星", "yes"} {
		if !contains(out, want) {
			t.Errorf("catalog table missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogDocumentJSON(t *testing.T) {
	// catalog show --json prints this document; it must load back.
	data, err := json.Marshal(catalog.Default().Document())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "default.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, "")
	if _, err := runCLI(t, "catalog", "validate", path); err != nil {
		t.Errorf("default document does not validate: %v", err)
	}
}

func TestCatalogShowJSON(t *testing.T) {
	writeConfig(t, "")
	out, err := runCLI(t, "catalog", "show", "--json")
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	var doc catalog.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not a catalog document: %v\n%s", err, out)
	}
	c, err := doc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if c.Total() != catalog.Default().Total() {
		t.Errorf("total = %d, want %d", c.Total(), catalog.Default().Total())
	}
}

func TestCatalogShowConfiguredTiers(t *testing.T) {
	writeConfig(t, `
[[tiers]]
name = "dust"
scale = 0.1
count = 12
min_distance = 10
`)
	out, err := runCLI(t, "catalog", "show", "--json")
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	var doc catalog.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Tiers) != 1 || doc.Tiers[0].Name != "dust" {
		t.Errorf("tiers = %+v, want the configured dust tier", doc.Tiers)
	}
}
