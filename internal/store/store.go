// Package store holds generated images in memory, keyed by the session id
// of the pipeline run that produced them. The store is volatile and
// process-scoped; entries survive only until they are deleted or the
// process exits.
package store

import (
	"errors"
	"sync"

	"github.com/Lllllllleong/adcreativeflow/internal/models"
)

// ErrNotFound is returned when a session or image id is unknown.
var ErrNotFound = errors.New("not found")

// SessionStore maps session ids to the ordered image lists produced by
// their runs. A single mutex is sufficient: entries are never partially
// written.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.GeneratedImage
}

// New creates an empty SessionStore.
func New() *SessionStore {
	return &SessionStore{sessions: make(map[string][]models.GeneratedImage)}
}

// Store records the images produced by one run under its session id and
// backfills the session id onto every image.
func (s *SessionStore) Store(sessionID string, images []models.GeneratedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]models.GeneratedImage, len(images))
	for i, img := range images {
		img.SessionID = sessionID
		stored[i] = img
	}
	s.sessions[sessionID] = stored
}

// Get returns the ordered image list for a session.
func (s *SessionStore) Get(sessionID string) ([]models.GeneratedImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	images, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.GeneratedImage, len(images))
	copy(out, images)
	return out, nil
}

// Delete removes a session. Deleting an unknown session is an error so the
// caller can distinguish it from a successful removal.
func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// FindImage scans all sessions for an image id. A linear scan is fine for
// a bounded in-memory structure.
func (s *SessionStore) FindImage(imageID string) (string, models.GeneratedImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sessionID, images := range s.sessions {
		for _, img := range images {
			if img.ID == imageID {
				return sessionID, img, nil
			}
		}
	}
	return "", models.GeneratedImage{}, ErrNotFound
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
