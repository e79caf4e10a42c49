package services

import (
	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

// EventType identifies the kind of progress event.
type EventType string

const (
	EventStarted            EventType = "started"
	EventStageProgress      EventType = "stage_progress"
	EventStageCompleted     EventType = "stage_completed"
	EventImageReady         EventType = "image_ready"
	EventGenerationComplete EventType = "generation_complete"
	EventError              EventType = "error"
	// EventEnd is always the last event on a stream, success or failure.
	// It tells the consumer to stop reading.
	EventEnd EventType = "end"
)

// Stage names carried on progress events.
const (
	StageAnalysis   = "brand_analysis"
	StageReferences = "loading_references"
	StagePrompts    = "prompt_enhancement"
	StageCopy       = "copy_generation"
	StageImages     = "image_generation"
)

// ProgressEvent is one entry on the ordered progress stream of a pipeline
// run. Error events come in two classes: stage-scoped per-item failures
// (Fatal false, the run continues) and pipeline halts (Fatal true, the run
// is over and only an end event follows).
type ProgressEvent struct {
	Type      EventType               `json:"type"`
	Stage     string                  `json:"stage,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Fatal     bool                    `json:"fatal,omitempty"`
	Progress  string                  `json:"progress,omitempty"`
	Prompts   []string                `json:"enhanced_prompts,omitempty"`
	AdCopy    *models.AdCopy          `json:"ad_copy,omitempty"`
	Image     *models.GeneratedImage  `json:"image,omitempty"`
	Images    []models.GeneratedImage `json:"images,omitempty"`
	SessionID string                  `json:"session_id,omitempty"`
}

// EventSink receives progress events. The pipeline calls it fire-and-forget
// and never waits for a reply; delivery order matches stage order.
type EventSink func(ProgressEvent)

// ProgressStream adapts an EventSink to a single-consumer channel. The
// pipeline side never blocks: if the consumer stops reading and the buffer
// fills, further events are dropped while the run continues to completion.
type ProgressStream struct {
	C chan ProgressEvent
}

// NewProgressStream creates a stream with the given buffer size.
func NewProgressStream(buffer int) *ProgressStream {
	return &ProgressStream{C: make(chan ProgressEvent, buffer)}
}

// Sink returns the producer-side sink for this stream.
func (p *ProgressStream) Sink() EventSink {
	return func(ev ProgressEvent) {
		select {
		case p.C <- ev:
		default:
			// Consumer gone or stalled; the pipeline must not block.
		}
	}
}

// Close releases the channel once the producing run has returned.
func (p *ProgressStream) Close() {
	close(p.C)
}
