package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

// generateAdCopy is the fourth stage. It always produces a copy record:
// structured output from the text capability when available and parseable,
// otherwise a deterministic template. Caller-supplied body and footer text
// override the description and cta unconditionally, last.
func (s *GenerationService) generateAdCopy(ctx context.Context, state *PipelineState) {
	logCtx := slog.With("stage", StageCopy, "product", state.Request.ProductName)

	copyRec := s.adCopyFromCapability(ctx, state, logCtx)
	if copyRec == nil {
		copyRec = fallbackAdCopy(state.Request)
	}

	// Unconditional overrides, applied last regardless of which path
	// produced the record.
	if state.Request.BodyText != "" {
		copyRec.Description = state.Request.BodyText
	}
	if state.Request.FooterText != "" {
		copyRec.CTA = state.Request.FooterText
	}

	state.AdCopy = copyRec
	logCtx.Info("Ad copy generated.", "headline", copyRec.Headline)
}

// adCopyFromCapability returns nil whenever the deterministic fallback
// should be used instead: capability absent, call error, or unparseable
// output.
func (s *GenerationService) adCopyFromCapability(ctx context.Context, state *PipelineState, logCtx *slog.Logger) *models.AdCopy {
	if s.text == nil {
		return nil
	}

	analysis := state.BrandAnalysis
	if analysis == "" {
		analysis = "Professional B2B business"
	}

	prompt := fmt.Sprintf(gcp.CopywriterPromptTemplate,
		analysis,
		state.Request.ProductName,
		state.Request.BusinessValue,
		state.Request.Audience,
	)

	raw, err := s.text.CompleteJSON(ctx, prompt)
	if err != nil {
		logCtx.Warn("Copy generation call failed, using fallback copy.", "error", err)
		return nil
	}

	var copyRec models.AdCopy
	if err := json.Unmarshal([]byte(raw), &copyRec); err != nil {
		logCtx.Warn("Could not parse copy JSON, using fallback copy.", "error", err, "responseBody", raw)
		return nil
	}
	return &copyRec
}

// fallbackAdCopy is the deterministic template populated from the request.
func fallbackAdCopy(req models.GenerationRequest) *models.AdCopy {
	return &models.AdCopy{
		Headline:    fmt.Sprintf("Transform Your Business with %s", req.ProductName),
		Description: fmt.Sprintf("Discover how %s delivers %s for %s. Join thousands of satisfied customers.", req.ProductName, req.BusinessValue, req.Audience),
		CTA:         "Book a Call",
	}
}
