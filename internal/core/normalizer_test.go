package core

import "testing"

func TestNFCNormalizer_ComposesDecomposedForms(t *testing.T) {
	n := NewNFCNormalizer()

	decomposed := "a\u030a" // a + combining ring above
	if got := n.Normalize(decomposed); got != "\u00e5" {
		t.Fatalf("expected precomposed \u00e5, got %q", got)
	}
	if got := n.Normalize("\u00e5"); got != "\u00e5" {
		t.Fatalf("precomposed input must be unchanged, got %q", got)
	}
}
