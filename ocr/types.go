package ocr

import (
	"context"
	"image"
)

// Page segmentation modes understood by Tesseract-compatible engines. These
// control how the engine analyzes page layout before recognizing characters.
const (
	PSMAuto        = 3  // Fully automatic page segmentation (engine default)
	PSMSingleBlock = 6  // Single uniform block of text
	PSMSingleLine  = 7  // Single text line
	PSMSparseText  = 11 // Find as much text as possible, no particular order
)

// Input encapsulates a single image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier that is echoed back in the
	// corresponding Result. The pipeline selector uses the pipeline name.
	ID string
	// Image is the decoded raster to recognize, typically the output of a
	// preprocessing pipeline.
	Image image.Image
	// Languages is a list of language hints (e.g., "eng", "deu") that
	// providers can use to select trained data.
	Languages []string
	// PageSegMode selects the layout analysis mode. Zero means the provider
	// default (PSMSingleBlock for the Tesseract provider, which suits the
	// block-of-text layout of event notices).
	PageSegMode int
	// DPI carries the effective dots-per-inch for the image. Providers use
	// this for scaling heuristics; zero means unknown.
	DPI int
	// Metadata allows callers to pass through engine-specific knobs (e.g.,
	// "tessedit_char_whitelist") without hard-coding them into the API.
	Metadata map[string]string
}

// Word is a single recognized token with its engine-reported confidence.
// Confidence is on the engine's native scale, 0-100 for Tesseract; values at
// or below zero mark non-text regions and are expected to be filtered by the
// scorer. Text may be blank for the same reason.
type Word struct {
	Text       string
	Confidence float64
}

// Result captures recognition output for a single input image. Words are in
// reading order: left to right, top to bottom.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// Words carries the raw per-word output, noise included.
	Words []Word
	// PlainText is the engine's linearized text, untrimmed of noise. The
	// scorer builds its own joined text from Words; PlainText exists for
	// debugging and engines that cannot report per-word detail.
	PlainText string
}

// Engine is the recognition provider contract: one image in, one result out.
// Implementations must return faults as errors, never panic, and must
// tolerate empty or degenerate images.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
