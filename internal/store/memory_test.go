package store

import (
	"sync"
	"testing"

	"github.com/shutterbin/image-service/internal/ident"
	"github.com/shutterbin/image-service/internal/models"
)

func sampleInput() CreateInput {
	return CreateInput{
		Provider:    models.ProviderLocal,
		ProviderKey: "abc123XYZ9.png",
		RawURL:      "/uploads/abc123XYZ9.png",
		Width:       800,
		Height:      600,
		Mime:        "image/png",
		Size:        51200,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	s := NewMemory()

	created, err := s.Create(sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.ID) != ident.Length || len(created.DeleteToken) != ident.Length {
		t.Fatalf("id/token lengths %d/%d, want %d", len(created.ID), len(created.DeleteToken), ident.Length)
	}
	if created.ID == created.DeleteToken {
		t.Fatal("delete token must be independent of id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("CreatedAt must be stamped")
	}

	got, exists := s.GetByID(created.ID)
	if !exists {
		t.Fatal("created record not retrievable")
	}
	if got != created {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, created)
	}
}

func TestGetByIDMiss(t *testing.T) {
	s := NewMemory()
	if _, exists := s.GetByID("nosuchid99"); exists {
		t.Fatal("empty store must miss")
	}
}

func TestDeleteGating(t *testing.T) {
	s := NewMemory()
	img, err := s.Create(sampleInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if s.Delete(img.ID, "wrongtoken") {
		t.Fatal("wrong token must not delete")
	}
	if _, exists := s.GetByID(img.ID); !exists {
		t.Fatal("record must survive a failed delete")
	}

	// Prefix and case variants are mismatches too.
	if s.Delete(img.ID, img.DeleteToken[:ident.Length-1]) {
		t.Fatal("token prefix must not delete")
	}
	if s.Delete("nosuchid99", img.DeleteToken) {
		t.Fatal("wrong id must not delete")
	}

	if !s.Delete(img.ID, img.DeleteToken) {
		t.Fatal("matching id and token must delete")
	}
	if _, exists := s.GetByID(img.ID); exists {
		t.Fatal("record must be gone after delete")
	}
	if s.Delete(img.ID, img.DeleteToken) {
		t.Fatal("second delete must report false")
	}
}

func TestDimensionlessRecord(t *testing.T) {
	s := NewMemory()
	in := sampleInput()
	in.Width = 0
	in.Height = 0
	in.Mime = "image/gif"

	img, err := s.Create(in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := s.GetByID(img.ID)
	if got.Width != 0 || got.Height != 0 {
		t.Fatalf("dimensions should stay absent, got %dx%d", got.Width, got.Height)
	}
}

func TestConcurrentCreateDelete(t *testing.T) {
	s := NewMemory()

	const n = 200
	ids := make([]string, n)
	tokens := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := s.Create(sampleInput())
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			ids[i] = img.ID
			tokens[i] = img.DeleteToken
		}(i)
	}
	wg.Wait()

	if s.Len() != n {
		t.Fatalf("store holds %d records, want %d", s.Len(), n)
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if !s.Delete(ids[i], tokens[i]) {
				t.Errorf("delete of %s failed", ids[i])
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 0 {
		t.Fatalf("store holds %d records after deletes, want 0", s.Len())
	}
}
