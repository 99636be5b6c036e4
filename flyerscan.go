// Package flyerscan converts a screenshot of an event notice (flyer, chat
// message, calendar invite) into structured fields: an event title, a
// resolved calendar date, and a location string.
//
// Recognition is adaptive: a fixed registry of preprocessing pipelines is
// executed against the input image, each candidate is recognized and scored,
// and the extractors run over the best-scoring transcript. Failures stay
// local throughout — a failed pipeline, a missing date, or an unmatched
// location never prevents extraction of the remaining fields.
package flyerscan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/wudi/flyerscan/observability"
	"github.com/wudi/flyerscan/ocr"
	"github.com/wudi/flyerscan/preprocess"
	"github.com/wudi/flyerscan/scan"
	"github.com/wudi/flyerscan/textproc"
)

// ErrImageLoad reports that the input image could not be opened or decoded.
// Fatal for the single invocation; the caller gets no result.
var ErrImageLoad = errors.New("flyerscan: image load failed")

// Config collects the scanner's collaborators. The zero value is usable:
// every field falls back to a stock implementation.
type Config struct {
	// Registry is the preprocessing pipeline set. Nil means the stock set.
	Registry *preprocess.Registry
	// Engine is the recognition provider. Nil means the process default
	// (Tesseract when the tesseract subpackage is imported).
	Engine ocr.Engine
	// Resolver is the natural-language date engine. Nil means the stock
	// future-biased resolver.
	Resolver textproc.DateResolver
	// Languages are recognition language hints. Empty means "eng".
	Languages []string
	// PageSegMode is the recognition layout mode. Zero means the provider
	// default (single uniform block).
	PageSegMode int
	// Workers enables concurrent pipeline execution when > 1.
	Workers int
	// PipelineTimeout bounds each pipeline's recognition call; a timed-out
	// pipeline scores zero and the search continues. Zero means unbounded.
	PipelineTimeout time.Duration
	// DebugDir, when set, receives the winning candidate's preprocessed
	// image as preprocessed_<pipeline>.png. Best effort; dump failures are
	// logged, never returned.
	DebugDir string
	// Logger receives diagnostics. Nil means silent.
	Logger observability.Logger
	// Tracer spans pipeline runs. Nil means no tracing.
	Tracer observability.Tracer
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Languages:   []string{"eng"},
		PageSegMode: ocr.PSMSingleBlock,
	}
}

// ExtractionResult is a scan's structured outcome. Each field is
// independently optional: a missing title does not invalidate the date, and
// vice versa. Zero values (empty strings, zero time) mean "not found".
type ExtractionResult struct {
	// Title is the first event-type keyword match, empty when none occurs.
	Title string `json:"title,omitempty"`
	// TitleContext surrounds the title match for human review.
	TitleContext string `json:"title_context,omitempty"`
	// Date is the resolved event date; check HasDate or IsZero.
	Date time.Time `json:"date,omitempty"`
	// DateText is the transcript fragment the date was resolved from.
	DateText string `json:"date_text,omitempty"`
	// Location is the first anchored location candidate.
	Location string `json:"location,omitempty"`
	// Locations lists every anchored candidate in reading order, duplicates
	// included.
	Locations []string `json:"locations,omitempty"`
	// RawText is the normalized transcript the extractors ran over.
	RawText string `json:"raw_text"`
	// Confidence is the winning pipeline's length-weighted score (0-100).
	Confidence float64 `json:"confidence"`
	// Pipeline names the winning preprocessing pipeline, empty when no
	// pipeline produced usable text.
	Pipeline string `json:"pipeline,omitempty"`
}

// HasDate reports whether a date was resolved.
func (r *ExtractionResult) HasDate() bool { return !r.Date.IsZero() }

// Scanner runs the adaptive recognition pipeline and the field extractors.
// A Scanner is immutable after construction and safe for concurrent use as
// long as its engine is.
type Scanner struct {
	cfg      Config
	selector *scan.Selector
	resolver textproc.DateResolver
	logger   observability.Logger
}

// New builds a Scanner from cfg, substituting stock collaborators for every
// nil field.
func New(cfg Config) *Scanner {
	if cfg.Registry == nil {
		cfg.Registry = preprocess.DefaultRegistry()
	}
	if cfg.Engine == nil {
		cfg.Engine = ocr.DefaultEngine()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = textproc.NewResolver()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	if cfg.PageSegMode == 0 {
		cfg.PageSegMode = ocr.PSMSingleBlock
	}

	selector := scan.NewSelector(cfg.Registry, cfg.Engine,
		scan.WithInputOptions(
			ocr.WithLanguages(cfg.Languages...),
			ocr.WithPageSegMode(cfg.PageSegMode),
		),
		scan.WithLogger(cfg.Logger),
		scan.WithTracer(cfg.Tracer),
		scan.WithWorkers(cfg.Workers),
		scan.WithPipelineTimeout(cfg.PipelineTimeout),
	)
	return &Scanner{
		cfg:      cfg,
		selector: selector,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
	}
}

// ScanFile loads an image from disk and scans it. Load failures are wrapped
// in ErrImageLoad.
func (s *Scanner) ScanFile(ctx context.Context, path string) (*ExtractionResult, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageLoad, path, err)
	}
	return s.ScanImage(ctx, img)
}

// ScanImage runs the pipeline search over img and extracts structured fields
// from the winning transcript. The only returned errors are image/context
// level; "nothing recognized" and "field not found" are reported through the
// result itself.
func (s *Scanner) ScanImage(ctx context.Context, img image.Image) (*ExtractionResult, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrImageLoad)
	}

	best, err := s.selector.Select(ctx, img)
	if err != nil {
		return nil, err
	}
	s.dumpDebugImage(best)

	res := &ExtractionResult{
		RawText:    textproc.Normalize(best.Text),
		Confidence: best.Score,
		Pipeline:   best.Pipeline,
	}
	if res.RawText == "" {
		return res, nil
	}

	if title, ok := textproc.ExtractTitle(res.RawText); ok {
		res.Title = title.Title
		res.TitleContext = title.Context
	}

	if date, err := textproc.ExtractDate(s.resolver, res.RawText); err == nil {
		res.Date = date.When
		res.DateText = date.Text
	} else {
		s.logger.Debug("no date resolved", observability.Error("err", err))
	}

	res.Locations = textproc.ExtractLocations(res.RawText)
	if len(res.Locations) > 0 {
		res.Location = res.Locations[0]
	}
	return res, nil
}

// dumpDebugImage writes the winning preprocessed image for offline tuning.
func (s *Scanner) dumpDebugImage(best scan.Candidate) {
	if s.cfg.DebugDir == "" || best.Image == nil || best.Pipeline == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.DebugDir, 0o755); err != nil {
		s.logger.Warn("debug dir", observability.Error("err", err))
		return
	}
	name := filepath.Join(s.cfg.DebugDir, "preprocessed_"+best.Pipeline+".png")
	if err := imaging.Save(best.Image, name); err != nil {
		s.logger.Warn("debug image dump failed",
			observability.String("path", name),
			observability.Error("err", err))
	}
}
