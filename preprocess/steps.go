// Package preprocess implements the image conditioning stage that runs ahead
// of text recognition. It exposes a fixed vocabulary of named transform steps,
// ordered pipelines built from them, and an executor that applies a pipeline
// to a raster image. Different captures (clean screenshots, photographed
// flyers, low-contrast chat windows) respond to different conditioning, so
// callers typically run every registered pipeline and keep the best read.
package preprocess

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Step names one image transform. Steps are stateless: each is a pure
// function of its input image, except StepInvertIfDark which inspects the
// image's mean intensity before deciding to act.
type Step string

const (
	StepGrayscale         Step = "grayscale"
	StepOtsuThreshold     Step = "otsu_threshold"
	StepInvertIfDark      Step = "invert_if_dark"
	StepScale2x           Step = "scale_2x"
	StepScale3x           Step = "scale_3x"
	StepGaussianBlur      Step = "gaussian_blur"
	StepDenoise           Step = "denoise"
	StepAdaptiveThreshold Step = "adaptive_threshold"
	StepMorphologyClose   Step = "morphology_close"
)

// ErrUnknownStep reports a step name outside the fixed vocabulary.
var ErrUnknownStep = errors.New("preprocess: unknown step")

// invertMeanCutoff is the mean intensity (0-255) below which a frame is
// considered dark text-on-light-inverted and gets its polarity flipped.
const invertMeanCutoff = 127

// adaptive threshold neighborhood radius and bias.
const (
	adaptiveRadius = 7
	adaptiveBias   = 10
)

// blurSigma approximates a 3x3 Gaussian kernel.
const blurSigma = 0.8

type stepFunc func(image.Image) (image.Image, error)

var stepFuncs = map[Step]stepFunc{
	StepGrayscale:         applyGrayscale,
	StepOtsuThreshold:     applyOtsuThreshold,
	StepInvertIfDark:      applyInvertIfDark,
	StepScale2x:           scaleBy(2),
	StepScale3x:           scaleBy(3),
	StepGaussianBlur:      applyGaussianBlur,
	StepDenoise:           applyDenoise,
	StepAdaptiveThreshold: applyAdaptiveThreshold,
	StepMorphologyClose:   applyMorphologyClose,
}

// ParseStep validates a step name from configuration.
func ParseStep(name string) (Step, error) {
	s := Step(name)
	if _, ok := stepFuncs[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}
	return s, nil
}

// Steps lists the full step vocabulary in stable order.
func Steps() []Step {
	return []Step{
		StepGrayscale,
		StepOtsuThreshold,
		StepInvertIfDark,
		StepScale2x,
		StepScale3x,
		StepGaussianBlur,
		StepDenoise,
		StepAdaptiveThreshold,
		StepMorphologyClose,
	}
}

// Apply runs the step on an image. Unknown steps and degenerate images are
// errors; the caller treats them as a failed pipeline, not a fatal fault.
func (s Step) Apply(img image.Image) (image.Image, error) {
	fn, ok := stepFuncs[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, string(s))
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("preprocess: step %s: empty image", s)
	}
	out, err := fn(img)
	if err != nil {
		return nil, fmt.Errorf("preprocess: step %s: %w", s, err)
	}
	return out, nil
}

func applyGrayscale(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

func applyOtsuThreshold(img image.Image) (image.Image, error) {
	g := toGray(img)
	return binarize(g, otsuLevel(g)), nil
}

func applyInvertIfDark(img image.Image) (image.Image, error) {
	g := toGray(img)
	if meanIntensity(g) >= invertMeanCutoff {
		return img, nil
	}
	return invertGray(g), nil
}

func scaleBy(factor int) stepFunc {
	return func(img image.Image) (image.Image, error) {
		b := img.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst, nil
	}
}

func applyGaussianBlur(img image.Image) (image.Image, error) {
	return imaging.Blur(img, blurSigma), nil
}

func applyDenoise(img image.Image) (image.Image, error) {
	return medianFilter(toGray(img)), nil
}

func applyAdaptiveThreshold(img image.Image) (image.Image, error) {
	return adaptiveBinarize(toGray(img), adaptiveRadius, adaptiveBias), nil
}

// applyMorphologyClose dilates then erodes, bridging gaps inside glyph
// strokes that thresholding tends to open up.
func applyMorphologyClose(img image.Image) (image.Image, error) {
	return erode(dilate(toGray(img))), nil
}
