package ident

import (
	"strings"
	"testing"
)

func TestNewShape(t *testing.T) {
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		id := New()
		if len(id) != Length {
			t.Fatalf("id %q has length %d, want %d", id, len(id), Length)
		}
		for _, r := range id {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("id %q contains %q, not in alphabet", id, r)
			}
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("collision after %d ids: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewExcludesConfusables(t *testing.T) {
	for _, c := range "0O1lI" {
		if strings.ContainsRune(Alphabet, c) {
			t.Errorf("alphabet must not contain %q", c)
		}
	}
	if len(Alphabet) != 57 {
		t.Errorf("alphabet has %d characters, want 57", len(Alphabet))
	}
}

func TestTokenIndependence(t *testing.T) {
	// Two consecutive draws stand in for an id/token pair. Identical values
	// would mean the generator is not consuming fresh randomness per call.
	for i := 0; i < 1000; i++ {
		if id, token := New(), New(); id == token {
			t.Fatalf("consecutive ids identical: %q", id)
		}
	}
}
