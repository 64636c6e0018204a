package core

import "golang.org/x/text/unicode/norm"

// Normalizer rewrites test inputs and expectations before they are sent to
// the lookup tool, and the tool's outputs before they are compared.
type Normalizer interface {
	Normalize(s string) string
}

// NFCNormalizer composes text to Unicode NFC so precomposed and decomposed
// spellings of the same form compare equal.
type NFCNormalizer struct{}

func NewNFCNormalizer() *NFCNormalizer { return &NFCNormalizer{} }

func (n *NFCNormalizer) Normalize(s string) string {
	return norm.NFC.String(s)
}
