package flyerscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wudi/flyerscan/preprocess"
)

const registryYAML = `
pipelines:
  - name: quick
    steps: [grayscale, otsu_threshold]
  - name: thorough
    steps: [grayscale, otsu_threshold, invert_if_dark, denoise, scale_2x]
`

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(registryYAML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	pipelines := reg.Pipelines()
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(pipelines))
	}
	if pipelines[0].Name != "quick" || pipelines[1].Name != "thorough" {
		t.Fatalf("file order not preserved: %+v", pipelines)
	}
	if pipelines[1].Steps[4] != preprocess.StepScale2x {
		t.Fatalf("unexpected steps: %+v", pipelines[1].Steps)
	}
}

func TestParseRegistryRejectsUnknownStep(t *testing.T) {
	_, err := ParseRegistry([]byte("pipelines:\n  - name: bad\n    steps: [sharpen]\n"))
	if err == nil {
		t.Fatalf("expected error for unknown step")
	}
}

func TestParseRegistryRejectsEmpty(t *testing.T) {
	if _, err := ParseRegistry([]byte("pipelines: []\n")); err == nil {
		t.Fatalf("expected error for empty registry")
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseRegistryBadYAML(t *testing.T) {
	if _, err := ParseRegistry([]byte("pipelines: [")); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
