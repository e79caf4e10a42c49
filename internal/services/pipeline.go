// Package services implements the ad creative generation pipeline: five
// ordered stages over a mutable state value, a progress-event protocol for
// live streaming, a rate-limit-aware image generation loop, and the
// fallback and modification paths around it.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/adcreativeflow/internal/models"
	"github.com/Lllllllleong/adcreativeflow/internal/store"
)

// PipelineState is the single mutable object threaded through all stages.
// Each stage consumes the fields of earlier stages and fills in its own;
// once Failure is set the orchestrator halts further stages.
type PipelineState struct {
	Request         models.GenerationRequest
	BrandAnalysis   string
	ReferenceAssets []models.ReferenceAsset
	StylePrompts    []string
	AdCopy          *models.AdCopy
	GeneratedImages []models.GeneratedImage
	SessionID       string
	Failure         string
}

// NewPipelineState creates the initial state for one run.
func NewPipelineState(req models.GenerationRequest) *PipelineState {
	return &PipelineState{Request: req}
}

// GenerationService orchestrates the pipeline. Capability handles, the
// image sink and the session store are injected so runs are hermetic; nil
// capabilities mean "absent" and activate the deterministic fallbacks.
type GenerationService struct {
	text  TextCompleter
	image ImageGenerator
	sink  ImageSink
	store *store.SessionStore
	cfg   GenerationConfig

	sleep func(time.Duration)
	now   func() time.Time
}

// NewGenerationService wires a service. text and image may be nil when the
// corresponding capability is not configured.
func NewGenerationService(cfg GenerationConfig, text TextCompleter, image ImageGenerator, sink ImageSink, st *store.SessionStore) *GenerationService {
	return &GenerationService{
		text:  text,
		image: image,
		sink:  sink,
		store: st,
		cfg:   cfg,
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Store exposes the artifact store to the transport layer.
func (s *GenerationService) Store() *store.SessionStore {
	return s.store
}

type stage struct {
	name         string
	startMessage string
	run          func(ctx context.Context, state *PipelineState)
}

// execute runs the five stages strictly in order, emitting progress events
// and short-circuiting on the first failure. With at least one image
// produced it assigns a session, stores it, and emits generation_complete.
// The caller owns the terminal end event.
func (s *GenerationService) execute(ctx context.Context, state *PipelineState, emit EventSink) {
	stages := []stage{
		{StageAnalysis, "Analyzing company information...", s.analyzeBrand},
		{StageReferences, "Loading reference ad examples...", s.loadReferences},
		{StagePrompts, "Enhancing prompts with AI...", s.enhancePrompts},
		{StageCopy, "Generating compelling ad copy...", s.generateAdCopy},
		{StageImages, "Generating images...", func(ctx context.Context, state *PipelineState) {
			s.generateImages(ctx, state, emit)
		}},
	}

	for _, st := range stages {
		emit(ProgressEvent{Type: EventStageProgress, Stage: st.name, Message: st.startMessage})

		st.run(ctx, state)
		if state.Failure != "" {
			emit(ProgressEvent{Type: EventError, Stage: st.name, Message: state.Failure, Fatal: true})
			return
		}

		completed := ProgressEvent{Type: EventStageCompleted, Stage: st.name}
		switch st.name {
		case StageAnalysis:
			completed.Message = "Company analysis completed"
		case StageReferences:
			completed.Message = fmt.Sprintf("Loaded %d reference images", len(state.ReferenceAssets))
		case StagePrompts:
			completed.Message = "Enhanced prompts generated"
			completed.Prompts = state.StylePrompts
		case StageCopy:
			completed.Message = "Ad copy generated"
			completed.AdCopy = state.AdCopy
		case StageImages:
			completed.Message = fmt.Sprintf("Generated %d images", len(state.GeneratedImages))
		}
		emit(completed)
	}

	sessionID := uuid.New().String()
	s.store.Store(sessionID, state.GeneratedImages)
	for i := range state.GeneratedImages {
		state.GeneratedImages[i].SessionID = sessionID
	}
	state.SessionID = sessionID

	emit(ProgressEvent{
		Type:      EventGenerationComplete,
		Message:   fmt.Sprintf("All %d images generated successfully", len(state.GeneratedImages)),
		Images:    state.GeneratedImages,
		Prompts:   state.StylePrompts,
		AdCopy:    state.AdCopy,
		SessionID: sessionID,
	})
}

// Run executes the whole pipeline synchronously and returns the final
// state. When the orchestrated pipeline halts before producing any images
// it falls back to the independent deterministic path; only total failure
// of both returns an error.
func (s *GenerationService) Run(ctx context.Context, req models.GenerationRequest) (*PipelineState, error) {
	logCtx := slog.With("product", req.ProductName)

	state := NewPipelineState(req)
	s.execute(ctx, state, func(ProgressEvent) {})

	if state.Failure == "" && len(state.GeneratedImages) > 0 {
		return state, nil
	}

	logCtx.Warn("Pipeline halted, attempting fallback generation.", "failure", state.Failure)
	images, err := s.GenerateFallback(ctx, req, nil)
	if err != nil {
		if state.Failure != "" {
			return state, errors.New(state.Failure)
		}
		return state, err
	}

	state.Failure = ""
	state.GeneratedImages = images
	state.SessionID = images[0].SessionID
	return state, nil
}

// RunWithProgress executes the pipeline while emitting ordered progress
// events to the sink. The sink is called fire-and-forget; the end event is
// always the last one, success or failure.
func (s *GenerationService) RunWithProgress(ctx context.Context, req models.GenerationRequest, emit EventSink) ([]models.GeneratedImage, error) {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}

	emit(ProgressEvent{Type: EventStarted, Message: "Starting image generation..."})

	state := NewPipelineState(req)
	s.execute(ctx, state, emit)

	emit(ProgressEvent{Type: EventEnd})

	if state.Failure != "" {
		return nil, errors.New(state.Failure)
	}
	return state.GeneratedImages, nil
}
