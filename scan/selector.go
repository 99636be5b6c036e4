package scan

import (
	"context"
	"image"
	"time"

	"github.com/wudi/flyerscan/observability"
	"github.com/wudi/flyerscan/ocr"
	"github.com/wudi/flyerscan/preprocess"
)

// Candidate is one pipeline's scored recognition outcome. Losing candidates
// are transient; only the winner's Image is typically retained (for optional
// debug dumps).
type Candidate struct {
	Pipeline string
	Text     string
	Score    float64
	Image    image.Image
	// Err records why this pipeline produced no usable text, nil otherwise.
	// A candidate with a non-nil Err always scores 0.
	Err error
}

// Selector runs the pipeline search over a fixed registry.
type Selector struct {
	registry  *preprocess.Registry
	engine    ocr.Engine
	inputOpts []ocr.InputOption
	logger    observability.Logger
	tracer    observability.Tracer
	workers   int
	timeout   time.Duration
}

// Option configures a Selector.
type Option func(*Selector)

// WithInputOptions applies recognition input options (languages, PSM, DPI,
// engine variables) to every pipeline's recognition call.
func WithInputOptions(opts ...ocr.InputOption) Option {
	return func(s *Selector) { s.inputOpts = append([]ocr.InputOption(nil), opts...) }
}

// WithLogger installs a diagnostics logger. Default is NopLogger.
func WithLogger(l observability.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer installs a tracer spanning each pipeline run.
func WithTracer(tr observability.Tracer) Option {
	return func(s *Selector) {
		if tr != nil {
			s.tracer = tr
		}
	}
}

// WithWorkers enables concurrent pipeline execution with up to n workers.
// Results are still compared in registration order, so the tie-break rule is
// unaffected by completion order. n < 2 keeps the sequential mode.
func WithWorkers(n int) Option {
	return func(s *Selector) { s.workers = n }
}

// WithPipelineTimeout bounds each pipeline's recognition call. A timed-out
// pipeline is treated exactly like a failed one: scored zero, search
// continues. Zero means no per-pipeline bound.
func WithPipelineTimeout(d time.Duration) Option {
	return func(s *Selector) { s.timeout = d }
}

// NewSelector builds a selector over the given registry and engine. A nil
// registry means the stock pipeline set; a nil engine means the process-wide
// default.
func NewSelector(registry *preprocess.Registry, engine ocr.Engine, opts ...Option) *Selector {
	if registry == nil {
		registry = preprocess.DefaultRegistry()
	}
	if engine == nil {
		engine = ocr.DefaultEngine()
	}
	s := &Selector{
		registry: registry,
		engine:   engine,
		logger:   observability.NopLogger{},
		tracer:   observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select runs every registered pipeline against img and returns the best
// candidate. Strictly greater score replaces the current best; ties keep the
// earlier-registered pipeline. If every pipeline fails or scores zero, the
// returned candidate has empty text and score 0 — "no usable text" is a
// valid outcome, not an error. The only error returned is context
// cancellation.
func (s *Selector) Select(ctx context.Context, img image.Image) (Candidate, error) {
	candidates, err := s.Run(ctx, img)
	if err != nil {
		return Candidate{}, err
	}
	best := Candidate{}
	for _, c := range candidates {
		if c.Score > best.Score {
			best = c
		}
	}
	s.logger.Debug("pipeline selected",
		observability.String("pipeline", best.Pipeline),
		observability.Float64("score", best.Score),
		observability.Int("candidates", len(candidates)))
	return best, nil
}

// Run executes every registered pipeline and returns all candidates in
// registration order, including failed ones (Score 0, Err set). Useful for
// diagnostics and registry tuning.
func (s *Selector) Run(ctx context.Context, img image.Image) ([]Candidate, error) {
	pipelines := s.registry.Pipelines()
	if s.workers > 1 {
		return s.runConcurrent(ctx, img, pipelines)
	}
	candidates := make([]Candidate, len(pipelines))
	for i, p := range pipelines {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		candidates[i] = s.runOne(ctx, img, p)
	}
	return candidates, nil
}

func (s *Selector) runConcurrent(ctx context.Context, img image.Image, pipelines []preprocess.Pipeline) ([]Candidate, error) {
	type indexed struct {
		i int
		c Candidate
	}
	sem := make(chan struct{}, s.workers)
	out := make(chan indexed, len(pipelines))
	for i, p := range pipelines {
		go func(i int, p preprocess.Pipeline) {
			sem <- struct{}{}
			defer func() { <-sem }()
			out <- indexed{i: i, c: s.runOne(ctx, img, p)}
		}(i, p)
	}
	// Reassemble by registration index so the caller's comparison order, and
	// with it the tie-break, stays deterministic.
	candidates := make([]Candidate, len(pipelines))
	for range pipelines {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-out:
			candidates[r.i] = r.c
		}
	}
	return candidates, nil
}

// runOne executes a single pipeline end to end. Any failure is folded into a
// zero-scored candidate; nothing escapes as an error or panic.
func (s *Selector) runOne(ctx context.Context, img image.Image, p preprocess.Pipeline) Candidate {
	ctx, span := s.tracer.StartSpan(ctx, "scan.pipeline")
	span.SetTag("pipeline", p.Name)
	defer span.Finish()
	start := time.Now()

	processed, err := p.Apply(img)
	if err != nil {
		span.SetError(err)
		s.logger.Warn("pipeline transform failed",
			observability.String("pipeline", p.Name),
			observability.Error("err", err))
		return Candidate{Pipeline: p.Name, Err: err}
	}

	in := ocr.Input{ID: p.Name, Image: processed}
	for _, opt := range s.inputOpts {
		opt(&in)
	}
	recognizeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		recognizeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.engine.Recognize(recognizeCtx, in)
	if err != nil {
		span.SetError(err)
		s.logger.Warn("pipeline recognition failed",
			observability.String("pipeline", p.Name),
			observability.Error("err", err))
		return Candidate{Pipeline: p.Name, Err: err}
	}

	text, score := Score(res.Words)
	s.logger.Debug("pipeline scored",
		observability.String("pipeline", p.Name),
		observability.Float64("score", score),
		observability.Int("words", len(res.Words)),
		observability.Duration("elapsed", time.Since(start)))
	return Candidate{Pipeline: p.Name, Text: text, Score: score, Image: processed}
}
