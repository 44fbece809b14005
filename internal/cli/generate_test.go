package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/sky"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, format string
		multi          bool
		want           string
	}{
		{"sky", "html", false, "sky.html"},
		{"sky.html", "html", false, "sky.html"},
		{"page.htm", "html", false, "page.htm"},
		{"night.svg", "png", true, "night.png"},
		{"out/sky", "svg", true, "out/sky.svg"},
		{"my.sky", "json", true, "my.sky.json"},
	}
	for _, tt := range tests {
		t.Run(tt.output+"/"+tt.format, func(t *testing.T) {
			if got := outputPath(tt.output, tt.format, tt.multi); got != tt.want {
				t.Errorf("outputPath(%q, %q, %v) = %q, want %q", tt.output, tt.format, tt.multi, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "night")
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "png", "json"}, base)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{base + ".svg", base + ".json"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not written: %v", p, err)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	writeConfig(t, "")
	base := filepath.Join(t.TempDir(), "night")

	_, err := runCLI(t, "generate", "--seed", "7", "--width", "600", "--height", "400",
		"-f", "svg,json", "-o", base)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg output missing <svg element")
	}

	s, err := sky.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read sky: %v", err)
	}
	if s.Seed != 7 {
		t.Errorf("seed = %d, want 7", s.Seed)
	}
	if s.Width != 600 || s.Height != 400 {
		t.Errorf("viewport = %vx%v, want 600x400", s.Width, s.Height)
	}
	if len(s.Stars) == 0 {
		t.Error("expected stars")
	}
	for _, st := range s.Stars {
		if st.X < s.Margin || st.X > s.Width-s.Margin || st.Y < s.Margin || st.Y > s.Height-s.Margin {
			t.Errorf("star %d at (%.1f, %.1f) outside margin %.0f", st.ID, st.X, st.Y, s.Margin)
		}
	}
}

func TestGenerateCommandPinnedSeedRepeats(t *testing.T) {
	writeConfig(t, "")
	dir := t.TempDir()

	run := func(name string) *sky.Sky {
		t.Helper()
		out := filepath.Join(dir, name+".json")
		if _, err := runCLI(t, "generate", "--seed", "99", "--width", "500", "--height", "300", "--no-cache", "-f", "json", "-o", out); err != nil {
			t.Fatalf("generate: %v", err)
		}
		s, err := sky.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	a, b := run("a"), run("b")
	if len(a.Stars) != len(b.Stars) {
		t.Fatalf("star counts differ: %d vs %d", len(a.Stars), len(b.Stars))
	}
	for i := range a.Stars {
		if a.Stars[i].X != b.Stars[i].X || a.Stars[i].Y != b.Stars[i].Y {
			t.Errorf("star %d moved: (%v,%v) vs (%v,%v)", i, a.Stars[i].X, a.Stars[i].Y, b.Stars[i].X, b.Stars[i].Y)
		}
	}
}

func TestGenerateCommandCatalogFile(t *testing.T) {
	writeConfig(t, "")
	dir := t.TempDir()
	catPath := filepath.Join(dir, "tiers.json")
	doc := `{"tiers":[{"name":"micro","scale":0.2,"count":5,"min_distance":20},{"name":"super","scale":1,"count":2,"min_distance":45}]}`
	if err := os.WriteFile(catPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "sky.json")
	if _, err := runCLI(t, "generate", "--seed", "3", "--catalog", catPath, "-f", "json", "-o", out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	s, err := sky.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(s.TierNames(), ","); got != "micro,super" {
		t.Errorf("tiers = %s, want micro,super", got)
	}
	if len(s.Stars) != 7 {
		t.Errorf("stars = %d, want 7", len(s.Stars))
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"format", []string{"-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"strategy", []string{"--strategy", "spiral"}, errors.ErrCodeInvalidStrategy},
		{"viewport", []string{"--width=-10"}, errors.ErrCodeInvalidViewport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, "")
			args := append([]string{"generate", "-o", filepath.Join(t.TempDir(), "x")}, tt.args...)
			_, err := runCLI(t, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	writeConfig(t, "")
	dir := t.TempDir()
	skyPath := filepath.Join(dir, "night.json")
	if _, err := runCLI(t, "generate", "--seed", "11", "--width", "500", "--height", "300", "-f", "json", "-o", skyPath); err != nil {
		t.Fatalf("generate: %v", err)
	}

	base := filepath.Join(dir, "night")
	if _, err := runCLI(t, "render", skyPath, "-f", "svg,html", "--popups", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<title>")) {
		t.Error("svg rendered with --popups should carry titles")
	}
	html, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(html, []byte("data-tier=")) {
		t.Error("html page missing stars")
	}
}

func TestRenderCommandMissingFile(t *testing.T) {
	writeConfig(t, "")
	if _, err := runCLI(t, "render", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for a missing sky document")
	}
}
