package services

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

// primaryRefPrefix marks the primary class of the reference pool. Exactly
// one primary is loaded per run, chosen at random when several exist.
const primaryRefPrefix = "main_ref"

var refImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// loadReferences is the second stage: a bounded, randomized subset of
// example images from the local pool. Asset-loading problems are never
// fatal; the stage degrades to fewer (possibly zero) references.
func (s *GenerationService) loadReferences(_ context.Context, state *PipelineState) {
	logCtx := slog.With("stage", StageReferences, "dir", s.cfg.RefDir)

	state.ReferenceAssets = []models.ReferenceAsset{}

	entries, err := os.ReadDir(s.cfg.RefDir)
	if err != nil {
		logCtx.Warn("Reference pool unavailable, continuing without references.", "error", err)
		return
	}

	var primaries, others []string
	for _, entry := range entries {
		if entry.IsDir() || !refImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if strings.HasPrefix(entry.Name(), primaryRefPrefix) {
			primaries = append(primaries, entry.Name())
		} else {
			others = append(others, entry.Name())
		}
	}

	var selected []string
	if len(primaries) > 0 {
		selected = append(selected, primaries[rand.Intn(len(primaries))])
	}
	rand.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if n := min(s.cfg.RefOtherCount, len(others)); n > 0 {
		selected = append(selected, others[:n]...)
	}

	for _, name := range selected {
		data, err := os.ReadFile(filepath.Join(s.cfg.RefDir, name))
		if err != nil {
			logCtx.Warn("Could not read reference image, skipping.", "file", name, "error", err)
			continue
		}
		state.ReferenceAssets = append(state.ReferenceAssets, models.ReferenceAsset{ID: name, Data: data})
	}

	logCtx.Info("Reference images loaded.", "count", len(state.ReferenceAssets))
}
