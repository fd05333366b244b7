package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidMinimal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	content := "buffers:\n  - key: stage0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(p.Buffers) != 1 {
		t.Fatalf("len(Buffers) = %d, want 1", len(p.Buffers))
	}
	if p.Buffers[0].Key != "stage0" {
		t.Errorf("Buffers[0].Key = %q, want %q", p.Buffers[0].Key, "stage0")
	}
}

func TestLoad_ValidFull(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	content := `version: 1
score: false
buffers:
  - key: stage0_dssim5x5_gaussian_linear_u32le
    dtype: u32_le
  - key: image1_rgba8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Version != 1 {
		t.Errorf("Version = %d, want 1", p.Version)
	}
	if p.ScoreEnabled() {
		t.Error("ScoreEnabled() = true, want false")
	}
	if len(p.Buffers) != 2 {
		t.Fatalf("len(Buffers) = %d, want 2", len(p.Buffers))
	}
	if p.Buffers[0].Dtype != "u32_le" {
		t.Errorf("Buffers[0].Dtype = %q, want %q", p.Buffers[0].Dtype, "u32_le")
	}
	if p.Buffers[1].Dtype != "" {
		t.Errorf("Buffers[1].Dtype = %q, want empty", p.Buffers[1].Dtype)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := Load("/nonexistent/path/plan.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read plan file") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "failed to read plan file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, []byte("buffers: [key: {"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse plan file") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "failed to parse plan file")
	}
}

func TestScoreEnabled_DefaultsTrue(t *testing.T) {
	t.Parallel()
	p := &Plan{}
	if !p.ScoreEnabled() {
		t.Error("ScoreEnabled() with nil Score = false, want true")
	}
}

func TestLoadAndValidate_AppliesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	content := "buffers:\n  - key: stage0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if p.Version != DefaultVersion {
		t.Errorf("Version = %d, want %d", p.Version, DefaultVersion)
	}
	if p.Score == nil || !*p.Score {
		t.Error("Score was not defaulted to true")
	}
}

func TestLoadAndValidate_ScoreOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	// An empty plan is a score-only plan.
	if err := os.WriteFile(path, []byte("score: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p, _, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if !p.ScoreEnabled() {
		t.Error("ScoreEnabled() = false, want true")
	}
	if len(p.Buffers) != 0 {
		t.Errorf("len(Buffers) = %d, want 0", len(p.Buffers))
	}
}

func TestLoadAndValidate_InvalidPlan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	content := "score: false\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("LoadAndValidate() expected error for plan that verifies nothing")
	}
	if !strings.Contains(err.Error(), "verifies nothing") {
		t.Errorf("error = %q, want to mention that the plan verifies nothing", err.Error())
	}
}
