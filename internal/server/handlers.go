package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/adcreativeflow/internal/models"
	"github.com/Lllllllleong/adcreativeflow/internal/services"
	"github.com/Lllllllleong/adcreativeflow/internal/store"
)

// ImageHandler exposes the generation pipeline over HTTP.
type ImageHandler struct {
	svc *services.GenerationService
}

// NewImageHandler creates the handler set.
func NewImageHandler(svc *services.GenerationService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Generate runs the whole pipeline synchronously.
func (h *ImageHandler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not parse JSON"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	state, err := h.svc.Run(c.Request.Context(), req)
	if err != nil {
		slog.Error("Generation run failed", "error", err, "product", req.ProductName)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("image generation failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.GenerationResponse{
		SessionID:       state.SessionID,
		Images:          state.GeneratedImages,
		EnhancedPrompts: state.StylePrompts,
		AdCopy:          state.AdCopy,
		Status:          "success",
		Message:         fmt.Sprintf("Successfully generated %d images", len(state.GeneratedImages)),
	})
}

// GenerateStream runs the pipeline in the background and forwards its
// ordered progress events as SSE frames until the terminal end event.
func (h *ImageHandler) GenerateStream(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not parse JSON"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	stream := services.NewProgressStream(256)
	// The run continues to completion even if the client disconnects, so
	// it gets the request's values but not its cancellation.
	runCtx := context.WithoutCancel(c.Request.Context())
	go func() {
		defer stream.Close()
		if _, err := h.svc.RunWithProgress(runCtx, req, stream.Sink()); err != nil {
			slog.Error("Streaming generation failed", "error", err, "product", req.ProductName)
		}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-stream.C
		if !ok {
			return false
		}
		c.SSEvent("message", ev)
		return ev.Type != services.EventEnd
	})
}

// Modify regenerates a stored image with a modification instruction.
func (h *ImageHandler) Modify(c *gin.Context) {
	var req models.ModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not parse JSON"})
		return
	}
	if req.ImageID == "" || req.ModificationPrompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "image_id and modification_prompt are required"})
		return
	}

	img, err := h.svc.ModifyImage(c.Request.Context(), req.ImageID, req.ModificationPrompt)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "image not found"})
			return
		}
		slog.Error("Image modification failed", "error", err, "imageId", req.ImageID)
		c.JSON(http.StatusBadGateway, gin.H{"detail": fmt.Sprintf("image modification failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.ModificationResponse{
		Image:   *img,
		Status:  "success",
		Message: "Image successfully modified",
	})
}

// GetSession returns the stored images for a session.
func (h *ImageHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	images, err := h.svc.Store().Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "session not found"})
		return
	}
	c.JSON(http.StatusOK, models.SessionResponse{SessionID: sessionID, Images: images})
}

// DeleteSession removes a stored session.
func (h *ImageHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if err := h.svc.Store().Delete(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Images deleted successfully"})
}

// Styles lists the available styles with their descriptions.
func (h *ImageHandler) Styles(c *gin.Context) {
	c.JSON(http.StatusOK, models.StylesResponse{
		Styles:       models.StyleOrder,
		Descriptions: services.StyleSummaries,
	})
}
