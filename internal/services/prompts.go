package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

// styleDescriptions is the static visual-style lookup table shared between
// the prompt-enhancement stage, the fallback-prompt generator and the
// modification path.
var styleDescriptions = map[models.Style]string{
	models.StyleProfessional: `Professional business person on a clean, simple background. Show: confident business professional in suit or professional attire, positioned prominently in frame, warm studio lighting, diverse representation. Background: solid white, light gray, or subtle blue gradient - NO office environments, NO complex backgrounds. Technical specs: shallow depth of field focusing on the person, high contrast between person and background for text overlay. The person should have a confident, approachable expression with professional credibility.`,
	models.StyleModern: `Modern professional with tech-forward styling on a minimalist backdrop. Show: contemporary business person in modern professional attire, clean lines, tech-savvy appearance. Background: solid modern colors like navy blue, teal, or a clean geometric pattern - AVOID complex office environments. Technical specs: crisp quality, modern color schemes, mobile-optimized composition. Focus on a single person with a contemporary, innovative look against a simple background.`,
	models.StyleCreative: `Creative professional with artistic but business-appropriate styling. Show: expressive but professional person with creative energy, approachable demeanor, engaging eye contact. Background: simple vibrant colors or subtle artistic patterns - NOT overwhelming, NO complex environments. Use compelling lighting and rich textures on the person while keeping the background minimal. Balance creativity with professional credibility through clean composition.`,
	models.StyleMinimalist: `Ultra-clean portrait with maximum simplicity. Show: single professional person, headshot or upper body, simple clothing, clear focus on the person. Background: pure white, light gray, or a single solid color - absolutely minimal, NO patterns or distractions. Technical specs: sharp focus on the person, clean lines, professional lighting. Emphasize clarity and simplicity with lots of negative space around the person.`,
	models.StyleBold: `Confident professional with strong visual impact on a high-contrast background. Show: dynamic business person with confident presence, strong expression, professional attire. Background: bold solid colors like deep blue, black, or strong contrast colors - NO complex elements. Technical specs: high contrast between person and background, energetic lighting on the person. Focus on a single confident professional against a simple, bold background.`,
}

// StyleSummaries are the short descriptions exposed on the style listing
// endpoint.
var StyleSummaries = map[models.Style]string{
	models.StyleProfessional: "Clean, corporate, and trustworthy design",
	models.StyleModern:       "Contemporary, sleek, and minimalist",
	models.StyleCreative:     "Artistic, unique, and eye-catching",
	models.StyleMinimalist:   "Simple, clean, and focused",
	models.StyleBold:         "Strong, vibrant, and attention-grabbing",
}

// StyleDescription returns the full visual-style guide for a style.
func StyleDescription(style models.Style) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return "Professional business style optimized for LinkedIn engagement"
}

// FallbackStylePrompt builds the deterministic per-style generation prompt
// used whenever the text capability is unavailable. It must be usable with
// zero external calls.
func FallbackStylePrompt(req models.GenerationRequest, style models.Style) string {
	return fmt.Sprintf(`Create a high-performing LinkedIn advertisement image for %s.

Business Value: %s
Target Audience: %s
Body Text Context: %s
Call-to-Action: %s
Style: %s

Technical Requirements:
- 1024x1024 pixels, high resolution, square format
- Professional LinkedIn advertising standards
- High contrast areas for text overlay of the CTA text: "%s"
- Modern, clean composition optimized for business audience engagement`,
		req.ProductName,
		req.BusinessValue,
		req.Audience,
		req.BodyText,
		req.FooterText,
		StyleDescription(style),
		ctaText(req),
	)
}

// ctaText is the CTA string that must appear verbatim in every image prompt.
func ctaText(req models.GenerationRequest) string {
	if strings.TrimSpace(req.FooterText) != "" {
		return req.FooterText
	}
	return "Learn More"
}

// enhancePrompts is the prompt-enhancement stage: one detailed generation
// prompt per style, in style order. A capability error here is fatal to the
// pipeline; the per-style loop has no partial-success mode.
func (s *GenerationService) enhancePrompts(ctx context.Context, state *PipelineState) {
	logCtx := slog.With("stage", StagePrompts, "product", state.Request.ProductName)

	analysis := state.BrandAnalysis
	if analysis == "" {
		analysis = "Professional B2B business"
	}

	prompts := make([]string, 0, len(models.StyleOrder))
	for _, style := range models.StyleOrder {
		if s.text == nil {
			prompts = append(prompts, FallbackStylePrompt(state.Request, style))
			continue
		}

		prompt := fmt.Sprintf(gcp.StylistPromptTemplate,
			state.Request.ProductName,
			state.Request.Audience,
			state.Request.BusinessValue,
			style,
			analysis,
			StyleDescription(style),
			ctaText(state.Request),
		)

		enhanced, err := s.text.Complete(ctx, prompt)
		if err != nil {
			logCtx.Error("Prompt enhancement failed", "style", style, "error", err)
			state.Failure = fmt.Sprintf("prompt enhancement failed for style %s: %v", style, err)
			return
		}
		prompts = append(prompts, strings.TrimSpace(enhanced))
	}

	state.StylePrompts = prompts
	logCtx.Info("Enhanced prompts generated.", "count", len(prompts))
}
