package preprocess

import (
	"errors"
	"fmt"
	"image"
)

// Pipeline is a named, ordered sequence of transform steps. Order matters:
// each step operates on the output of the previous one.
type Pipeline struct {
	Name  string
	Steps []Step
}

// Registry holds an immutable, ordered set of pipelines. Registration order
// is significant downstream: when two pipelines tie on recognition quality,
// the earlier-registered one wins.
type Registry struct {
	pipelines []Pipeline
	index     map[string]int
}

// NewRegistry validates and freezes a pipeline set. Names must be unique and
// non-empty, steps must come from the fixed vocabulary, and at least one
// pipeline is required.
func NewRegistry(pipelines ...Pipeline) (*Registry, error) {
	if len(pipelines) == 0 {
		return nil, errors.New("preprocess: registry needs at least one pipeline")
	}
	r := &Registry{
		pipelines: make([]Pipeline, 0, len(pipelines)),
		index:     make(map[string]int, len(pipelines)),
	}
	for _, p := range pipelines {
		if p.Name == "" {
			return nil, errors.New("preprocess: pipeline with empty name")
		}
		if _, dup := r.index[p.Name]; dup {
			return nil, fmt.Errorf("preprocess: duplicate pipeline %q", p.Name)
		}
		if len(p.Steps) == 0 {
			return nil, fmt.Errorf("preprocess: pipeline %q has no steps", p.Name)
		}
		for _, s := range p.Steps {
			if _, err := ParseStep(string(s)); err != nil {
				return nil, fmt.Errorf("preprocess: pipeline %q: %w", p.Name, err)
			}
		}
		copied := Pipeline{Name: p.Name, Steps: append([]Step(nil), p.Steps...)}
		r.index[p.Name] = len(r.pipelines)
		r.pipelines = append(r.pipelines, copied)
	}
	return r, nil
}

// Pipelines returns the registered pipelines in registration order.
func (r *Registry) Pipelines() []Pipeline {
	return append([]Pipeline(nil), r.pipelines...)
}

// Len reports the number of registered pipelines.
func (r *Registry) Len() int { return len(r.pipelines) }

// Lookup finds a pipeline by name along with its registration index.
func (r *Registry) Lookup(name string) (Pipeline, int, bool) {
	i, ok := r.index[name]
	if !ok {
		return Pipeline{}, 0, false
	}
	return r.pipelines[i], i, true
}

// DefaultRegistry returns the stock pipeline set. Pipelines are ordered from
// cheapest to most aggressive; no single recipe wins across all capture
// qualities, which is why the selector tries them all.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Pipeline{Name: "basic", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark}},
		Pipeline{Name: "denoised", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark, StepDenoise}},
		Pipeline{Name: "scaled_2x", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark, StepScale2x}},
		Pipeline{Name: "scaled_3x", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark, StepScale3x}},
		Pipeline{Name: "scaled_smoothed", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark, StepScale2x, StepGaussianBlur}},
		Pipeline{Name: "adaptive_thresh", Steps: []Step{StepGrayscale, StepAdaptiveThreshold, StepInvertIfDark}},
		Pipeline{Name: "morphology", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark, StepMorphologyClose}},
		Pipeline{Name: "full_pipeline", Steps: []Step{StepGrayscale, StepOtsuThreshold, StepInvertIfDark, StepDenoise, StepScale2x, StepGaussianBlur}},
	)
	if err != nil {
		// The stock set is defined from the step constants above; a failure
		// here is a programming error, not a runtime condition.
		panic(err)
	}
	return r
}

// Apply executes the pipeline's steps in order against img and returns the
// final image. The first failing step aborts the pipeline.
func (p Pipeline) Apply(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("preprocess: pipeline %q: nil image", p.Name)
	}
	out := img
	for _, s := range p.Steps {
		next, err := s.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
		}
		out = next
	}
	return out, nil
}
