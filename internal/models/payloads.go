package models

// These structs define the JSON payloads exchanged between the HTTP
// transport and its clients.

// GenerationResponse is the reply to a synchronous generation call.
type GenerationResponse struct {
	SessionID       string           `json:"session_id"`
	Images          []GeneratedImage `json:"images"`
	EnhancedPrompts []string         `json:"enhanced_prompts,omitempty"`
	AdCopy          *AdCopy          `json:"ad_copy,omitempty"`
	Status          string           `json:"status"`
	Message         string           `json:"message,omitempty"`
}

// ModificationRequest asks for a regeneration of an existing image with a
// free-text modification instruction applied.
type ModificationRequest struct {
	ImageID            string `json:"image_id"`
	ModificationPrompt string `json:"modification_prompt"`
}

// ModificationResponse is the reply to a modification call.
type ModificationResponse struct {
	Image   GeneratedImage `json:"image"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
}

// SessionResponse is the reply to a session lookup.
type SessionResponse struct {
	SessionID string           `json:"session_id"`
	Images    []GeneratedImage `json:"images"`
}

// StylesResponse lists the available styles with their descriptions.
type StylesResponse struct {
	Styles       []Style          `json:"styles"`
	Descriptions map[Style]string `json:"descriptions"`
}
