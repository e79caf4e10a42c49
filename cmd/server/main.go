package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/adcreativeflow/internal/gcp"
	"github.com/Lllllllleong/adcreativeflow/internal/server"
	"github.com/Lllllllleong/adcreativeflow/internal/services"
	"github.com/Lllllllleong/adcreativeflow/internal/store"
)

func main() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := services.LoadGenerationConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	host := gcp.GetEnv("HOST", "0.0.0.0")
	port := gcp.GetEnv("PORT", "8080")
	baseURL := gcp.GetEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%s", port))
	staticDir := gcp.GetEnv("STATIC_DIR", "static")

	// --- Capability clients: absent capabilities degrade, never abort ---
	var text services.TextCompleter
	var image services.ImageGenerator

	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		slog.Warn("PROJECT_ID not set. AI capabilities absent; the pipeline will use deterministic fallbacks and placeholder images.")
	} else {
		vertexClient, err := gcp.NewVertexClient(ctx, projectID, gcp.GetEnv("VERTEX_AI_REGION", "us-central1"))
		if err != nil {
			return fmt.Errorf("failed to create vertex client: %w", err)
		}
		defer vertexClient.Close()
		text = vertexClient
		image = vertexClient
	}

	// --- Image sink: GCS when a bucket is configured, local disk otherwise ---
	var sink services.ImageSink
	if bucket := gcp.GetEnv("GENERATED_IMAGES_BUCKET", ""); bucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		defer storageClient.Close()
		sink, err = services.NewGCSSink(storageClient, bucket)
		if err != nil {
			return err
		}
		staticDir = "" // nothing local to serve
	} else {
		localSink, err := services.NewLocalSink(staticDir, baseURL)
		if err != nil {
			return err
		}
		sink = localSink
	}

	svc := services.NewGenerationService(*cfg, text, image, sink, store.New())
	router := server.NewRouter(server.RouterConfig{
		Images:    server.NewImageHandler(svc),
		StaticDir: staticDir,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, port),
		Handler: router,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening.", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
