package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

// generateImages is the fifth stage: one image per style, strictly
// sequential, with an unconditional pacing delay before every call except
// the first. A per-style failure is logged, reported as a stage-scoped
// non-fatal error event, and skipped; the stage only fails when no image at
// all was produced.
func (s *GenerationService) generateImages(ctx context.Context, state *PipelineState, emit EventSink) {
	logCtx := slog.With("stage", StageImages, "product", state.Request.ProductName)

	if len(state.StylePrompts) != len(models.StyleOrder) {
		state.Failure = "no enhanced prompts available"
		return
	}

	total := len(models.StyleOrder)
	images := make([]models.GeneratedImage, 0, total)
	for i, style := range models.StyleOrder {
		// Pacing floor dictated by the capability's rate ceiling. Applied
		// even when earlier calls failed.
		if i > 0 {
			s.sleep(s.cfg.RateLimitDelay)
		}

		emit(ProgressEvent{
			Type:     EventStageProgress,
			Stage:    StageImages,
			Message:  fmt.Sprintf("Generating %s style image (%d/%d)...", style, i+1, total),
			Progress: fmt.Sprintf("%d/%d", i+1, total),
		})

		img, err := s.generateSingleImage(ctx, state.StylePrompts[i], style, state.ReferenceAssets)
		if err != nil {
			logCtx.Error("Image generation failed for style, skipping.", "style", style, "error", err)
			emit(ProgressEvent{
				Type:    EventError,
				Stage:   StageImages,
				Message: fmt.Sprintf("Failed to generate %s style image: %v", style, err),
			})
			continue
		}

		images = append(images, *img)
		emit(ProgressEvent{
			Type:     EventImageReady,
			Stage:    StageImages,
			Message:  fmt.Sprintf("%s style image completed", style),
			Image:    img,
			Progress: fmt.Sprintf("%d/%d", i+1, total),
		})
	}

	state.GeneratedImages = images
	if len(images) == 0 {
		state.Failure = "image generation produced no images"
		return
	}
	logCtx.Info("Image generation complete.", "generated", len(images), "requested", total)
}

// generateSingleImage issues one capability call and persists the output.
// With the capability absent it returns a placeholder reference instead of
// calling anything.
func (s *GenerationService) generateSingleImage(ctx context.Context, prompt string, style models.Style, refs []models.ReferenceAsset) (*models.GeneratedImage, error) {
	id := uuid.New().String()

	if s.image == nil {
		return &models.GeneratedImage{
			ID:                  id,
			URL:                 placeholderURL(style),
			Style:               style,
			PromptUsed:          prompt,
			GenerationTimestamp: models.NewTimestamp(s.now()),
		}, nil
	}

	refBytes := make([][]byte, 0, len(refs))
	for _, ref := range refs {
		refBytes = append(refBytes, ref.Data)
	}

	data, err := s.image.GenerateImage(ctx, prompt, refBytes)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s_%s.png", style, id[:8])
	url, err := s.sink.Save(ctx, objectName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to persist generated image: %w", err)
	}

	return &models.GeneratedImage{
		ID:                  id,
		URL:                 url,
		Style:               style,
		PromptUsed:          prompt,
		GenerationTimestamp: models.NewTimestamp(s.now()),
	}, nil
}

func placeholderURL(style models.Style) string {
	name := string(style)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("https://placehold.co/1024x1024/f3f4f6/6b7280?text=%s", name)
}

// GenerateFallback is the degrade-to-minimum-viable-output path: the
// deterministic per-style prompts go straight to the image capability with
// the same pacing rule, bypassing the four earlier stages entirely. It
// works with zero text-completion availability.
func (s *GenerationService) GenerateFallback(ctx context.Context, req models.GenerationRequest, emit EventSink) ([]models.GeneratedImage, error) {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}
	logCtx := slog.With("stage", StageImages, "product", req.ProductName, "path", "fallback")

	total := len(models.StyleOrder)
	images := make([]models.GeneratedImage, 0, total)
	for i, style := range models.StyleOrder {
		if i > 0 {
			s.sleep(s.cfg.RateLimitDelay)
		}

		img, err := s.generateSingleImage(ctx, FallbackStylePrompt(req, style), style, nil)
		if err != nil {
			logCtx.Error("Fallback generation failed for style, skipping.", "style", style, "error", err)
			emit(ProgressEvent{
				Type:    EventError,
				Stage:   StageImages,
				Message: fmt.Sprintf("Failed to generate %s style image: %v", style, err),
			})
			continue
		}
		images = append(images, *img)
		emit(ProgressEvent{
			Type:     EventImageReady,
			Stage:    StageImages,
			Message:  fmt.Sprintf("%s style image completed", style),
			Image:    img,
			Progress: fmt.Sprintf("%d/%d", i+1, total),
		})
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("fallback generation produced no images")
	}

	sessionID := uuid.New().String()
	s.store.Store(sessionID, images)
	for i := range images {
		images[i].SessionID = sessionID
	}
	logCtx.Info("Fallback generation complete.", "sessionId", sessionID, "generated", len(images))
	return images, nil
}

// ModifyImage regenerates a previously stored image with a modification
// instruction applied. Unknown ids surface store.ErrNotFound; a capability
// failure propagates to the caller, never a placeholder.
func (s *GenerationService) ModifyImage(ctx context.Context, imageID, instruction string) (*models.GeneratedImage, error) {
	sessionID, original, err := s.store.FindImage(imageID)
	if err != nil {
		return nil, err
	}
	logCtx := slog.With("imageId", imageID, "sessionId", sessionID)

	prompt := fmt.Sprintf(gcp.ModificationPromptTemplate,
		instruction,
		original.PromptUsed,
		StyleDescription(original.Style),
	)

	if s.image == nil {
		return nil, fmt.Errorf("image generation capability is not configured")
	}

	data, err := s.image.GenerateImage(ctx, prompt, nil)
	if err != nil {
		logCtx.Error("Image modification failed", "error", err)
		return nil, fmt.Errorf("failed to modify image: %w", err)
	}

	id := uuid.New().String()
	objectName := fmt.Sprintf("modified_%s.png", id[:8])
	url, err := s.sink.Save(ctx, objectName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to persist modified image: %w", err)
	}

	logCtx.Info("Image modification complete.", "newImageId", id)
	return &models.GeneratedImage{
		ID:                  id,
		URL:                 url,
		Style:               original.Style,
		PromptUsed:          prompt,
		GenerationTimestamp: models.NewTimestamp(s.now()),
	}, nil
}
