// Package scan runs uploaded buffers through ClamAV and evicts anything
// infected. Scanning is asynchronous and best effort: a scanner failure
// never affects the upload it trails.
package scan

import (
	"bytes"
	"context"
	"log"

	clamd "github.com/dutchcoders/go-clamd"

	"github.com/shutterbin/image-service/internal/provider"
	"github.com/shutterbin/image-service/internal/store"
)

// Scanner checks uploads against a clamd instance and removes infected
// records together with their stored bytes.
type Scanner struct {
	clam     *clamd.Clamd
	store    store.Store
	provider provider.Provider
}

func New(clamAvURL string, st store.Store, p provider.Provider) *Scanner {
	return &Scanner{
		clam:     clamd.NewClamd(clamAvURL),
		store:    st,
		provider: p,
	}
}

// Scan streams the buffer to clamd. Meant to run in its own goroutine after
// the upload response has been sent.
func (s *Scanner) Scan(id, deleteToken string, data []byte) {
	response, err := s.clam.ScanStream(bytes.NewReader(data), make(chan bool))
	if err != nil {
		log.Printf("[SCAN] scan failed for %s: %v", id, err)
		return
	}

	for res := range response {
		if res.Status != clamd.RES_FOUND {
			continue
		}
		log.Printf("[SCAN] virus detected in %s: %s", id, res.Description)

		img, exists := s.store.GetByID(id)
		if !exists {
			return
		}
		if !s.store.Delete(id, deleteToken) {
			log.Printf("[SCAN] failed to delete infected record %s", id)
			return
		}
		if err := s.provider.Remove(context.Background(), img.ProviderKey); err != nil {
			log.Printf("[SCAN] failed to delete infected object %s: %v", img.ProviderKey, err)
		}
		return
	}

	log.Printf("[SCAN] scan finished for %s: clean", id)
}
