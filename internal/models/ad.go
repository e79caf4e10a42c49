package models

import (
	"fmt"
	"net/url"
	"time"
)

// Style is one of the five fixed visual treatments applied to a generation
// run. The order of StyleOrder is significant: it drives both prompt
// generation and the rate-limited image generation sequence.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleModern       Style = "modern"
	StyleCreative     Style = "creative"
	StyleMinimalist   Style = "minimalist"
	StyleBold         Style = "bold"
)

// StyleOrder is the canonical style sequence for a generation run.
var StyleOrder = []Style{
	StyleProfessional,
	StyleModern,
	StyleCreative,
	StyleMinimalist,
	StyleBold,
}

// GenerationRequest is the immutable input for one pipeline run.
type GenerationRequest struct {
	CompanyURL    string `json:"company_url"`
	ProductName   string `json:"product_name"`
	BusinessValue string `json:"business_value"`
	Audience      string `json:"audience"`
	BodyText      string `json:"body_text"`
	FooterText    string `json:"footer_text"`
}

// Validate checks the request independently of any transport binding, so
// the pipeline can be driven directly (e.g. from tests or another entry
// point) with the same guarantees.
func (r *GenerationRequest) Validate() error {
	if r.ProductName == "" {
		return fmt.Errorf("product_name is required")
	}
	u, err := url.ParseRequestURI(r.CompanyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("company_url must be a valid absolute URL")
	}
	return nil
}

// ReferenceAsset is one example image selected from the local pool to
// ground image generation.
type ReferenceAsset struct {
	ID   string
	Data []byte
}

// AdCopy is the structured copy record produced by the copy stage.
type AdCopy struct {
	Headline    string `json:"headline"`
	Description string `json:"description"`
	CTA         string `json:"cta"`
}

// GeneratedImage is one produced ad image. It is never mutated after
// creation except to backfill SessionID once the run's session is stored.
type GeneratedImage struct {
	ID                  string `json:"id"`
	URL                 string `json:"url"`
	Style               Style  `json:"style"`
	PromptUsed          string `json:"prompt_used"`
	GenerationTimestamp string `json:"generation_timestamp"`
	SessionID           string `json:"session_id,omitempty"`
}

// NewTimestamp formats a creation time the way the wire format expects.
func NewTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
