package services

import "context"

// TextCompleter is the text-completion capability consumed by the analysis,
// prompt-enhancement and copy stages. It may be entirely absent (a nil
// field on the service), in which case every stage uses its deterministic
// fallback instead of calling it.
type TextCompleter interface {
	// Complete sends a prompt and returns plain text.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteJSON sends a prompt to a JSON-constrained model and returns
	// the raw JSON string.
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator is the image-generation capability. It may be absent, in
// which case stages return placeholder references instead of calling it.
type ImageGenerator interface {
	// GenerateImage sends a prompt plus optional reference images and
	// returns the raw bytes of a single square output.
	GenerateImage(ctx context.Context, prompt string, refs [][]byte) ([]byte, error)
}
