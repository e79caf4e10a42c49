package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/adcreativeflow/internal/models"
	"github.com/Lllllllleong/adcreativeflow/internal/store"
)

// --- fakes shared across the package tests ---

type fakeText struct {
	completeFn func(prompt string) (string, error)
	jsonFn     func(prompt string) (string, error)
}

func (f *fakeText) Complete(_ context.Context, prompt string) (string, error) {
	if f.completeFn != nil {
		return f.completeFn(prompt)
	}
	return "enhanced: " + firstLine(prompt), nil
}

func (f *fakeText) CompleteJSON(_ context.Context, prompt string) (string, error) {
	if f.jsonFn != nil {
		return f.jsonFn(prompt)
	}
	return `{"headline":"H","description":"D","cta":"C"}`, nil
}

type fakeImage struct {
	calls int
	fn    func(prompt string, refs [][]byte) ([]byte, error)
}

func (f *fakeImage) GenerateImage(_ context.Context, prompt string, refs [][]byte) ([]byte, error) {
	f.calls++
	if f.fn != nil {
		return f.fn(prompt, refs)
	}
	return []byte("png-bytes"), nil
}

type memSink struct {
	saved []string
}

func (m *memSink) Save(_ context.Context, objectName string, _ []byte) (string, error) {
	m.saved = append(m.saved, objectName)
	return "mem://" + objectName, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

type testEnv struct {
	svc    *GenerationService
	sink   *memSink
	store  *store.SessionStore
	sleeps *[]time.Duration
}

func newTestEnv(text TextCompleter, image ImageGenerator) *testEnv {
	sink := &memSink{}
	st := store.New()
	cfg := GenerationConfig{
		RefDir:         "testdata-does-not-exist",
		RefOtherCount:  2,
		RateLimitDelay: 12 * time.Second,
	}
	svc := NewGenerationService(cfg, text, image, sink, st)

	var sleeps []time.Duration
	svc.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return &testEnv{svc: svc, sink: sink, store: st, sleeps: &sleeps}
}

func sampleRequest() models.GenerationRequest {
	return models.GenerationRequest{
		CompanyURL:    "https://example.com",
		ProductName:   "Acme Analytics",
		BusinessValue: "30% faster reporting",
		Audience:      "data leaders",
		BodyText:      "",
		FooterText:    "Book a Demo",
	}
}

// --- orchestrator tests ---

func TestRunBothCapabilitiesAbsent(t *testing.T) {
	env := newTestEnv(nil, nil)

	state, err := env.svc.Run(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(state.GeneratedImages) != len(models.StyleOrder) {
		t.Fatalf("expected %d images, got %d", len(models.StyleOrder), len(state.GeneratedImages))
	}
	for i, img := range state.GeneratedImages {
		if img.Style != models.StyleOrder[i] {
			t.Errorf("image %d: expected style %s, got %s", i, models.StyleOrder[i], img.Style)
		}
		if !strings.Contains(img.URL, "placehold") {
			t.Errorf("image %d: expected placeholder URL, got %q", i, img.URL)
		}
		if img.SessionID != state.SessionID {
			t.Errorf("image %d: session id not backfilled", i)
		}
	}

	if state.AdCopy == nil {
		t.Fatal("expected a copy record from the deterministic template")
	}
	if state.AdCopy.CTA != "Book a Demo" {
		t.Errorf("footer_text override not applied to cta: %q", state.AdCopy.CTA)
	}
	if state.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if _, err := env.store.Get(state.SessionID); err != nil {
		t.Fatalf("session not stored: %v", err)
	}
}

func TestRunWithProgressEventOrdering(t *testing.T) {
	env := newTestEnv(nil, nil)

	var events []ProgressEvent
	images, err := env.svc.RunWithProgress(context.Background(), sampleRequest(), func(ev ProgressEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("RunWithProgress failed: %v", err)
	}
	if len(images) != 5 {
		t.Fatalf("expected 5 images, got %d", len(images))
	}

	if events[0].Type != EventStarted {
		t.Errorf("first event should be started, got %s", events[0].Type)
	}
	if events[len(events)-1].Type != EventEnd {
		t.Errorf("last event should be end, got %s", events[len(events)-1].Type)
	}

	// Every stage must open with stage_progress and close with
	// stage_completed, in pipeline order.
	wantStages := []string{StageAnalysis, StageReferences, StagePrompts, StageCopy, StageImages}
	var progressStages, completedStages []string
	var sawComplete bool
	for _, ev := range events {
		switch ev.Type {
		case EventStageProgress:
			if ev.Stage != StageImages || len(progressStages) == 0 || progressStages[len(progressStages)-1] != StageImages {
				progressStages = append(progressStages, ev.Stage)
			}
		case EventStageCompleted:
			completedStages = append(completedStages, ev.Stage)
			if ev.Stage == StagePrompts && len(ev.Prompts) != 5 {
				t.Errorf("stage_completed for prompts should carry 5 prompts, got %d", len(ev.Prompts))
			}
			if ev.Stage == StageCopy && ev.AdCopy == nil {
				t.Error("stage_completed for copy should carry the copy record")
			}
		case EventGenerationComplete:
			sawComplete = true
			if len(ev.Images) != 5 {
				t.Errorf("generation_complete should carry 5 images, got %d", len(ev.Images))
			}
			if ev.SessionID == "" {
				t.Error("generation_complete should carry the session id")
			}
		case EventError:
			t.Errorf("unexpected error event: %+v", ev)
		}
	}
	if !sawComplete {
		t.Error("missing generation_complete event")
	}
	if fmt.Sprint(progressStages) != fmt.Sprint(wantStages) {
		t.Errorf("stage_progress order = %v, want %v", progressStages, wantStages)
	}
	if fmt.Sprint(completedStages) != fmt.Sprint(wantStages) {
		t.Errorf("stage_completed order = %v, want %v", completedStages, wantStages)
	}
}

func TestRunWithProgressSingleStyleFailure(t *testing.T) {
	image := &fakeImage{fn: func(prompt string, _ [][]byte) ([]byte, error) {
		if strings.Contains(prompt, "vibrant") { // creative style guide marker
			return nil, fmt.Errorf("quota exceeded")
		}
		return []byte("png"), nil
	}}
	env := newTestEnv(nil, image)

	var events []ProgressEvent
	images, err := env.svc.RunWithProgress(context.Background(), sampleRequest(), func(ev ProgressEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("RunWithProgress failed: %v", err)
	}
	if len(images) != 4 {
		t.Fatalf("expected 4 images after one style failure, got %d", len(images))
	}
	for _, img := range images {
		if img.Style == models.StyleCreative {
			t.Error("failed style should be omitted, not present")
		}
	}

	var styleErrors, fatalErrors int
	var completeMessage string
	for _, ev := range events {
		if ev.Type == EventError {
			if ev.Fatal {
				fatalErrors++
			} else {
				styleErrors++
			}
		}
		if ev.Type == EventGenerationComplete {
			completeMessage = ev.Message
		}
	}
	if styleErrors != 1 {
		t.Errorf("expected exactly 1 stage-scoped error event, got %d", styleErrors)
	}
	if fatalErrors != 0 {
		t.Errorf("expected no fatal error events, got %d", fatalErrors)
	}
	if !strings.Contains(completeMessage, "4") {
		t.Errorf("generation_complete message should reflect 4 images: %q", completeMessage)
	}
	if events[len(events)-1].Type != EventEnd {
		t.Error("end must be the terminal event")
	}
}

func TestRunWithProgressPipelineHalt(t *testing.T) {
	text := &fakeText{completeFn: func(string) (string, error) {
		return "", fmt.Errorf("capability timeout")
	}}
	env := newTestEnv(text, nil)

	var events []ProgressEvent
	_, err := env.svc.RunWithProgress(context.Background(), sampleRequest(), func(ev ProgressEvent) {
		events = append(events, ev)
	})
	if err == nil {
		t.Fatal("expected an error from a halted pipeline")
	}

	last := events[len(events)-1]
	if last.Type != EventEnd {
		t.Fatalf("end must still terminate a failed stream, got %s", last.Type)
	}
	errEv := events[len(events)-2]
	if errEv.Type != EventError || !errEv.Fatal || errEv.Stage != StageAnalysis {
		t.Fatalf("expected a fatal error event for the analysis stage before end, got %+v", errEv)
	}
	if env.store.Len() != 0 {
		t.Error("halted pipeline must not create a session")
	}
}

func TestRunFallsBackWhenPipelineHalts(t *testing.T) {
	// Text capability fails (fatal in stage 1); images still work, so the
	// independent fallback path should salvage the run.
	text := &fakeText{completeFn: func(string) (string, error) {
		return "", fmt.Errorf("capability down")
	}}
	image := &fakeImage{}
	env := newTestEnv(text, image)

	state, err := env.svc.Run(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Run should fall back, got error: %v", err)
	}
	if len(state.GeneratedImages) != 5 {
		t.Fatalf("fallback should produce 5 images, got %d", len(state.GeneratedImages))
	}
	if image.calls != 5 {
		t.Errorf("fallback should call the capability once per style, got %d", image.calls)
	}
	if state.SessionID == "" {
		t.Error("fallback result should be stored under a session")
	}
}

func TestReferencePoolMissingIsNotAnError(t *testing.T) {
	env := newTestEnv(nil, nil)

	var refEvents []ProgressEvent
	_, err := env.svc.RunWithProgress(context.Background(), sampleRequest(), func(ev ProgressEvent) {
		if ev.Stage == StageReferences {
			refEvents = append(refEvents, ev)
		}
	})
	if err != nil {
		t.Fatalf("missing reference pool must not fail the run: %v", err)
	}
	for _, ev := range refEvents {
		if ev.Type == EventError {
			t.Errorf("no error event expected for the reference stage, got %+v", ev)
		}
	}
}
