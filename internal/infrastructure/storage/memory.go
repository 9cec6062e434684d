package storage

import (
	"context"
	"errors"
	"sync"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
	"github.com/google/uuid"
)

// Ensure MemoryArchive implements Archiver
var _ appingestion.Archiver = (*MemoryArchive)(nil)

// MemoryArchive keeps attachments in memory. Use it for development and
// tests until a real bucket is configured.
type MemoryArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryArchive creates an empty MemoryArchive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{objects: make(map[string][]byte)}
}

// Archive stores the attachment and returns its key
func (a *MemoryArchive) Archive(_ context.Context, tenantID, sessionID uuid.UUID, data []byte, mime string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("attachment data is empty")
	}
	key := ArchiveKey(tenantID, sessionID, mime)

	a.mu.Lock()
	defer a.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	a.objects[key] = stored
	return key, nil
}

// Get returns a stored attachment by key
func (a *MemoryArchive) Get(key string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.objects[key]
	return data, ok
}
