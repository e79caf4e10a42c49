package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
)

// GenerationConfig holds all tunables of the generation pipeline. The
// reference-image counts and the inter-call delay vary between deployments,
// so they are configuration rather than constants.
type GenerationConfig struct {
	// RefDir is the local reference asset pool. Files whose names start
	// with "main_ref" form the primary class.
	RefDir string
	// RefOtherCount is the maximum number of non-primary references
	// loaded alongside the single primary one.
	RefOtherCount int
	// RateLimitDelay is the unconditional pause before every image
	// generation call except the first. The external capability allows 5
	// calls per minute, hence the 12s default.
	RateLimitDelay time.Duration
}

// LoadGenerationConfig reads the pipeline configuration from the environment.
func LoadGenerationConfig() (*GenerationConfig, error) {
	cfg := &GenerationConfig{
		RefDir:         gcp.GetEnv("REFERENCE_IMAGES_DIR", "datasets/ref_imgs"),
		RefOtherCount:  2,
		RateLimitDelay: 12 * time.Second,
	}

	if v := gcp.GetEnv("REFERENCE_OTHER_COUNT", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("REFERENCE_OTHER_COUNT must be a non-negative integer, got %q", v)
		}
		cfg.RefOtherCount = n
	}

	if v := gcp.GetEnv("IMAGE_RATE_LIMIT_DELAY_SECONDS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("IMAGE_RATE_LIMIT_DELAY_SECONDS must be a non-negative integer, got %q", v)
		}
		cfg.RateLimitDelay = time.Duration(n) * time.Second
	}

	return cfg, nil
}
