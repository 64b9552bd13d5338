package msa

import "strings"

const (
	// Canonical holds the 20 standard amino acids in one-letter code.
	Canonical = "ACDEFGHIKLMNPQRSTVWY"
	// Gap marks an alignment position without a residue.
	Gap = '-'
	// Unknown marks a missing or unknown residue.
	Unknown = 'X'
	// Alphabet is the ordered 22-symbol alphabet behind the numeric encodings.
	Alphabet = Canonical + "-X"
)

var alphabetIndex [256]int8

func init() {
	for i := range alphabetIndex {
		alphabetIndex[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		alphabetIndex[Alphabet[i]] = int8(i)
	}
}

// Index returns the position of c in Alphabet.
func Index(c byte) (int, bool) {
	i := alphabetIndex[c]
	if i < 0 {
		return 0, false
	}
	return int(i), true
}

func isCanonical(c byte) bool {
	i := alphabetIndex[c]
	return i >= 0 && int(i) < len(Canonical)
}

// Vet uppercases seq and maps every character outside the 20 canonical
// amino acids to Unknown.
func Vet(seq string) string {
	upper := strings.ToUpper(seq)
	out := make([]byte, len(upper))
	for i := 0; i < len(upper); i++ {
		if isCanonical(upper[i]) {
			out[i] = upper[i]
		} else {
			out[i] = Unknown
		}
	}
	return string(out)
}

// IsValid checks that seq, once uppercased, only uses canonical residues and Unknown.
func IsValid(seq string) bool {
	upper := strings.ToUpper(seq)
	for i := 0; i < len(upper); i++ {
		if !isCanonical(upper[i]) && upper[i] != Unknown {
			return false
		}
	}
	return true
}

// GapCount counts gap characters in seq.
func GapCount(seq string) int {
	return strings.Count(seq, string(Gap))
}

// GapFraction is the share of gap characters in seq; empty sequences have none.
func GapFraction(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	return float64(GapCount(seq)) / float64(len(seq))
}
