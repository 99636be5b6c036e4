// Package tesseract provides the default, Tesseract-backed recognition engine
// via the gosseract client. It requires the Tesseract native library to be
// installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/flyerscan/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine using gosseract. A fresh client is created per
// call, so the engine is safe for concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed recognition engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single input and returns the raw per-word
// output, including blank and zero-confidence tokens for non-text regions.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}
	if in.Image == nil || in.Image.Bounds().Empty() {
		return ocr.Result{}, fmt.Errorf("tesseract: empty input image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: encode image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	if err := c.SetLanguage(langs...); err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: set languages: %w", err)
	}
	psm := in.PageSegMode
	if psm == 0 {
		psm = ocr.PSMSingleBlock
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: set page seg mode: %w", err)
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("tesseract: set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("tesseract: set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: recognize: %w", err)
	}

	return ocr.Result{
		InputID:   in.ID,
		Words:     extractWords(c),
		PlainText: strings.TrimSpace(text),
	}, nil
}

// extractWords reads per-word bounding boxes, keeping Tesseract's native
// 0-100 confidence scale. A box query failure degrades to an empty word list
// rather than an error; the scorer treats that as an unusable read.
func extractWords(c *gosseract.Client) []ocr.Word {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{Text: b.Word, Confidence: b.Confidence})
	}
	return words
}
