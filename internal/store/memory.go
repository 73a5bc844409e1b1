package store

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/shutterbin/image-service/internal/ident"
	"github.com/shutterbin/image-service/internal/models"
)

// idRetries bounds the generate-and-check loop on Create. With a 57^10
// space a single retry is already overkill; hitting the bound means the
// random source is broken, not that we got unlucky.
const idRetries = 5

// MemoryStore keeps all records in a process-lifetime map. Everything is
// lost on restart; it exists to be swapped for PostgresStore in deployments
// that need durability.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Image
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.Image),
	}
}

func (s *MemoryStore) Create(in CreateInput) (models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	for i := 0; ; i++ {
		id = ident.New()
		if _, taken := s.records[id]; !taken {
			break
		}
		if i == idRetries {
			return models.Image{}, fmt.Errorf("failed to generate unique id after %d attempts", idRetries)
		}
	}

	// The token is a second independent draw, never derived from the id.
	img := models.Image{
		ID:          id,
		Provider:    in.Provider,
		ProviderKey: in.ProviderKey,
		RawURL:      in.RawURL,
		Width:       in.Width,
		Height:      in.Height,
		Mime:        in.Mime,
		Size:        in.Size,
		DeleteToken: ident.New(),
		CreatedAt:   time.Now(),
	}
	s.records[id] = img
	return img, nil
}

func (s *MemoryStore) GetByID(id string) (models.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, exists := s.records[id]
	return img, exists
}

func (s *MemoryStore) Delete(id, deleteToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, exists := s.records[id]
	if !exists {
		return false
	}
	if !tokensEqual(img.DeleteToken, deleteToken) {
		return false
	}
	delete(s.records, id)
	return true
}

// Len reports the number of live records, for stats endpoints and tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// tokensEqual is a constant-time full-value comparison. A prefix or
// case-folded match must never pass.
func tokensEqual(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
