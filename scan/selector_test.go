package scan

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/wudi/flyerscan/ocr"
	"github.com/wudi/flyerscan/preprocess"
)

func testImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		if i%3 == 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

func testRegistry(t *testing.T, names ...string) *preprocess.Registry {
	t.Helper()
	pipelines := make([]preprocess.Pipeline, 0, len(names))
	for _, n := range names {
		pipelines = append(pipelines, preprocess.Pipeline{
			Name:  n,
			Steps: []preprocess.Step{preprocess.StepGrayscale},
		})
	}
	r, err := preprocess.NewRegistry(pipelines...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

// scriptedEngine returns canned words (or an error) per input ID.
type scriptedEngine struct {
	mu      sync.Mutex
	words   map[string][]ocr.Word
	fail    map[string]error
	failAll error
	calls   []string
}

func (e *scriptedEngine) Name() string { return "scripted" }

func (e *scriptedEngine) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, in.ID)
	e.mu.Unlock()
	if e.failAll != nil {
		return ocr.Result{}, e.failAll
	}
	if err, ok := e.fail[in.ID]; ok {
		return ocr.Result{}, err
	}
	return ocr.Result{InputID: in.ID, Words: e.words[in.ID]}, nil
}

func TestSelectPicksHighestScore(t *testing.T) {
	engine := &scriptedEngine{words: map[string][]ocr.Word{
		"a": {{Text: "blurry", Confidence: 40}},
		"b": {{Text: "crisp", Confidence: 90}},
		"c": {{Text: "okay", Confidence: 70}},
	}}
	s := NewSelector(testRegistry(t, "a", "b", "c"), engine)

	best, err := s.Select(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if best.Pipeline != "b" || best.Text != "crisp" || best.Score != 90 {
		t.Fatalf("unexpected winner: %+v", best)
	}
	if best.Image == nil {
		t.Fatalf("winner should retain its processed image")
	}
}

func TestSelectTieKeepsEarlierRegistered(t *testing.T) {
	engine := &scriptedEngine{words: map[string][]ocr.Word{
		"first":  {{Text: "same", Confidence: 80}},
		"second": {{Text: "same", Confidence: 80}},
	}}
	s := NewSelector(testRegistry(t, "first", "second"), engine)

	best, err := s.Select(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if best.Pipeline != "first" {
		t.Fatalf("tie should keep the earlier pipeline, got %q", best.Pipeline)
	}
}

func TestSelectAllFailuresReturnsEmptyResult(t *testing.T) {
	engine := &scriptedEngine{failAll: errors.New("engine down")}
	s := NewSelector(testRegistry(t, "a", "b", "c"), engine)

	best, err := s.Select(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Select() must not fail when every pipeline fails, got %v", err)
	}
	if best.Text != "" || best.Score != 0 {
		t.Fatalf("expected empty result, got %+v", best)
	}
	if len(engine.calls) != 3 {
		t.Fatalf("expected all pipelines attempted, got %v", engine.calls)
	}
}

func TestSelectOneFailureDoesNotAbortSearch(t *testing.T) {
	engine := &scriptedEngine{
		words: map[string][]ocr.Word{
			"good": {{Text: "Workshop", Confidence: 75}},
		},
		fail: map[string]error{"bad": errors.New("unsupported shape")},
	}
	s := NewSelector(testRegistry(t, "bad", "good"), engine)

	best, err := s.Select(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if best.Pipeline != "good" || best.Score != 75 {
		t.Fatalf("unexpected winner: %+v", best)
	}
}

func TestRunReportsCandidatesInRegistrationOrder(t *testing.T) {
	engine := &scriptedEngine{
		words: map[string][]ocr.Word{
			"a": {{Text: "x", Confidence: 10}},
			"c": {{Text: "z", Confidence: 30}},
		},
		fail: map[string]error{"b": errors.New("boom")},
	}
	s := NewSelector(testRegistry(t, "a", "b", "c"), engine)

	candidates, err := s.Run(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	for i, name := range []string{"a", "b", "c"} {
		if candidates[i].Pipeline != name {
			t.Fatalf("candidate %d = %q, want %q", i, candidates[i].Pipeline, name)
		}
	}
	if candidates[1].Err == nil || candidates[1].Score != 0 {
		t.Fatalf("failed pipeline should carry Err and score 0: %+v", candidates[1])
	}
}

func TestSelectConcurrentPreservesTieBreak(t *testing.T) {
	engine := &scriptedEngine{words: map[string][]ocr.Word{
		"first":  {{Text: "same", Confidence: 80}},
		"second": {{Text: "same", Confidence: 80}},
		"third":  {{Text: "less", Confidence: 10}},
	}}
	s := NewSelector(testRegistry(t, "first", "second", "third"), engine, WithWorkers(3))

	for i := 0; i < 20; i++ {
		best, err := s.Select(context.Background(), testImage())
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if best.Pipeline != "first" {
			t.Fatalf("run %d: tie-break broken under concurrency: %q", i, best.Pipeline)
		}
	}
}

// stallingEngine blocks until its context expires.
type stallingEngine struct{}

func (stallingEngine) Name() string { return "stalling" }

func (stallingEngine) Recognize(ctx context.Context, _ ocr.Input) (ocr.Result, error) {
	<-ctx.Done()
	return ocr.Result{}, ctx.Err()
}

func TestPipelineTimeoutIsRecoverable(t *testing.T) {
	s := NewSelector(testRegistry(t, "slow"), stallingEngine{},
		WithPipelineTimeout(5*time.Millisecond))

	best, err := s.Select(context.Background(), testImage())
	if err != nil {
		t.Fatalf("timeout must not abort the search, got %v", err)
	}
	if best.Text != "" || best.Score != 0 {
		t.Fatalf("expected empty result after timeout, got %+v", best)
	}
}

func TestSelectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSelector(testRegistry(t, "a"), &scriptedEngine{})
	if _, err := s.Select(ctx, testImage()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
