package preprocess

import (
	"errors"
	"image"
	"testing"
)

func TestNewRegistryValidation(t *testing.T) {
	cases := []struct {
		name      string
		pipelines []Pipeline
	}{
		{"empty set", nil},
		{"empty name", []Pipeline{{Steps: []Step{StepGrayscale}}}},
		{"no steps", []Pipeline{{Name: "p"}}},
		{"duplicate name", []Pipeline{
			{Name: "p", Steps: []Step{StepGrayscale}},
			{Name: "p", Steps: []Step{StepDenoise}},
		}},
		{"unknown step", []Pipeline{{Name: "p", Steps: []Step{"emboss"}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewRegistry(c.pipelines...); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestRegistryPreservesOrder(t *testing.T) {
	r, err := NewRegistry(
		Pipeline{Name: "z", Steps: []Step{StepGrayscale}},
		Pipeline{Name: "a", Steps: []Step{StepDenoise}},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	got := r.Pipelines()
	if got[0].Name != "z" || got[1].Name != "a" {
		t.Fatalf("registration order not preserved: %+v", got)
	}

	if _, i, ok := r.Lookup("a"); !ok || i != 1 {
		t.Fatalf("Lookup(a) = %d, %v", i, ok)
	}
	if _, _, ok := r.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing) should fail")
	}
}

func TestRegistryIsolation(t *testing.T) {
	steps := []Step{StepGrayscale}
	r, err := NewRegistry(Pipeline{Name: "p", Steps: steps})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	steps[0] = "mutated"
	if r.Pipelines()[0].Steps[0] != StepGrayscale {
		t.Fatalf("registry shares caller's step slice")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	want := []string{
		"basic", "denoised", "scaled_2x", "scaled_3x",
		"scaled_smoothed", "adaptive_thresh", "morphology", "full_pipeline",
	}
	got := r.Pipelines()
	if len(got) != len(want) {
		t.Fatalf("expected %d pipelines, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("pipeline %d = %q, want %q", i, got[i].Name, name)
		}
		if len(got[i].Steps) == 0 {
			t.Fatalf("pipeline %q has no steps", name)
		}
	}
}

func TestPipelineApplyOrder(t *testing.T) {
	// Scaling then thresholding must yield a scaled binary image; the scale
	// factor proves the steps ran in the declared order on accumulated
	// output.
	p := Pipeline{Name: "scaled_binary", Steps: []Step{StepGrayscale, StepScale2x, StepOtsuThreshold}}
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		if i%2 == 0 {
			src.Pix[i] = 40
		} else {
			src.Pix[i] = 210
		}
	}
	out, err := p.Apply(src)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if b := out.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestPipelineApplyFailsFastOnBadStep(t *testing.T) {
	p := Pipeline{Name: "broken", Steps: []Step{StepGrayscale, "emboss"}}
	if _, err := p.Apply(image.NewGray(image.Rect(0, 0, 4, 4))); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestPipelineApplyNilImage(t *testing.T) {
	p := Pipeline{Name: "p", Steps: []Step{StepGrayscale}}
	if _, err := p.Apply(nil); err == nil {
		t.Fatalf("expected error for nil image")
	}
}
