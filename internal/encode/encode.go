// Package encode turns sequences into numeric feature matrices for clustering.
//
// Two schemes are available. OneHot writes one indicator per position and
// alphabet symbol, flattened row-major. NumVector writes the alphabet index
// of each residue. Sequences shorter than the longest one are padded with
// zeros (OneHot) or -1 (NumVector).
package encode

import (
	"fmt"
	"math"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Encoding names a sequence encoding scheme.
type Encoding string

const (
	// OneHot encodes each position as len(msa.Alphabet) indicators.
	OneHot Encoding = "onehot"
	// NumVector encodes each position as its alphabet index.
	NumVector Encoding = "numvector"
)

// Parse validates an encoding name.
func Parse(name string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(name)); e {
	case OneHot, NumVector:
		return e, nil
	case "":
		return OneHot, nil
	default:
		return "", &msa.InvalidParameterError{
			Name:   "sequence encoding",
			Value:  name,
			Reason: "expected onehot or numvector",
		}
	}
}

// Encode applies the named encoding to every sequence.
func Encode(e Encoding, sequences []string) ([][]float64, error) {
	switch e {
	case OneHot:
		return EncodeOneHot(sequences, 0), nil
	case NumVector:
		return EncodeNumVector(sequences, 0), nil
	default:
		_, err := Parse(string(e))
		return nil, err
	}
}

// symbol maps a residue to its alphabet index. Lowercase insertion letters
// are folded to uppercase and unknown characters count as X.
func symbol(c byte) int {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if i, ok := msa.Index(c); ok {
		return i
	}
	i, _ := msa.Index(msa.Unknown)
	return i
}

func width(sequences []string, maxLength int) int {
	if maxLength > 0 {
		return maxLength
	}
	for _, s := range sequences {
		maxLength = max(maxLength, len(s))
	}
	return maxLength
}

// EncodeOneHot one-hot encodes sequences into rows of
// maxLength*len(msa.Alphabet) values. A maxLength of 0 uses the longest
// sequence; longer sequences are cut.
func EncodeOneHot(sequences []string, maxLength int) [][]float64 {
	L := width(sequences, maxLength)
	A := len(msa.Alphabet)

	out := make([][]float64, len(sequences))
	for i, s := range sequences {
		row := make([]float64, L*A)
		for j := 0; j < len(s) && j < L; j++ {
			row[j*A+symbol(s[j])] = 1
		}
		out[i] = row
	}
	return out
}

// EncodeNumVector encodes sequences as alphabet indices padded with -1.
func EncodeNumVector(sequences []string, maxLength int) [][]float64 {
	L := width(sequences, maxLength)

	out := make([][]float64, len(sequences))
	for i, s := range sequences {
		row := make([]float64, L)
		for j := range row {
			if j < len(s) {
				row[j] = float64(symbol(s[j]))
			} else {
				row[j] = -1
			}
		}
		out[i] = row
	}
	return out
}

// WithColumns appends the named numeric columns of t to each feature row.
// Missing or non-numeric columns, and NaN or infinite values, yield a
// msa.SchemaError.
func WithColumns(features [][]float64, t *msa.Table, columns []string) ([][]float64, error) {
	if len(columns) == 0 {
		return features, nil
	}

	values := make([][]float64, len(columns))
	for k, name := range columns {
		v, err := t.NumericColumn(name)
		if err != nil {
			return nil, err
		}
		for i, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, &msa.SchemaError{Column: name, Reason: fmt.Sprintf("row %d: value %v is not finite", i, x)}
			}
		}
		values[k] = v
	}

	out := make([][]float64, len(features))
	for i, row := range features {
		ext := make([]float64, len(row), len(row)+len(columns))
		copy(ext, row)
		for k := range columns {
			ext = append(ext, values[k][i])
		}
		out[i] = ext
	}
	return out, nil
}

// Features encodes the sequences of t and appends the requested columns.
func Features(t *msa.Table, e Encoding, columns []string) ([][]float64, error) {
	if err := msa.RequireSequences(t); err != nil {
		return nil, err
	}
	features, err := Encode(e, t.Sequences())
	if err != nil {
		return nil, err
	}
	return WithColumns(features, t, columns)
}
