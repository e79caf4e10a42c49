package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

func sampleImages(n int) []models.GeneratedImage {
	images := make([]models.GeneratedImage, n)
	for i := range images {
		images[i] = models.GeneratedImage{
			ID:    fmt.Sprintf("img-%d", i),
			Style: models.StyleOrder[i%len(models.StyleOrder)],
			URL:   fmt.Sprintf("http://localhost:8080/static/img-%d.png", i),
		}
	}
	return images
}

func TestStoreRoundTrip(t *testing.T) {
	s := New()
	s.Store("session-1", sampleImages(3))

	got, err := s.Get("session-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 images, got %d", len(got))
	}
	for i, img := range got {
		if img.SessionID != "session-1" {
			t.Errorf("image %d: session id not backfilled, got %q", i, img.SessionID)
		}
		if img.ID != fmt.Sprintf("img-%d", i) {
			t.Errorf("image order not preserved at index %d: %q", i, img.ID)
		}
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := New()
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	s.Store("session-1", sampleImages(1))

	if err := s.Delete("session-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("session-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete("session-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestFindImage(t *testing.T) {
	s := New()
	s.Store("session-1", sampleImages(2))
	s.Store("session-2", []models.GeneratedImage{{ID: "target", Style: models.StyleBold}})

	sessionID, img, err := s.FindImage("target")
	if err != nil {
		t.Fatalf("FindImage failed: %v", err)
	}
	if sessionID != "session-2" {
		t.Errorf("expected session-2, got %q", sessionID)
	}
	if img.SessionID != "session-2" {
		t.Errorf("found image missing backfilled session id: %q", img.SessionID)
	}

	if _, _, err := s.FindImage("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			s.Store(id, sampleImages(2))
			if _, err := s.Get(id); err != nil {
				t.Errorf("Get %s failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()
	if s.Len() != 20 {
		t.Fatalf("expected 20 sessions, got %d", s.Len())
	}
}
