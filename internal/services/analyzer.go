package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
)

// analyzeBrand is the first stage: a text summary of the brand and its
// audience used to ground every later prompt. With the text capability
// absent it degrades to a deterministic one-liner; a capability error is
// fatal to the pipeline.
func (s *GenerationService) analyzeBrand(ctx context.Context, state *PipelineState) {
	logCtx := slog.With("stage", StageAnalysis, "product", state.Request.ProductName)

	if s.text == nil {
		state.BrandAnalysis = fmt.Sprintf("Professional business analysis for %s targeting %s",
			state.Request.ProductName, state.Request.Audience)
		logCtx.Info("Text capability absent, using deterministic analysis.")
		return
	}

	prompt := fmt.Sprintf(gcp.AnalystPromptTemplate,
		state.Request.CompanyURL,
		state.Request.ProductName,
		state.Request.BusinessValue,
		state.Request.Audience,
		state.Request.BodyText,
		state.Request.FooterText,
	)

	analysis, err := s.text.Complete(ctx, prompt)
	if err != nil {
		logCtx.Error("Brand analysis failed", "error", err)
		state.Failure = fmt.Sprintf("brand analysis failed: %v", err)
		return
	}

	state.BrandAnalysis = analysis
	logCtx.Info("Brand analysis completed.")
}
