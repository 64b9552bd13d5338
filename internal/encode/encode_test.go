package encode

import (
	"math"
	"testing"

	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	e, err := Parse("onehot")
	require.NoError(t, err)
	assert.Equal(t, OneHot, e)

	e, err = Parse("NumVector")
	require.NoError(t, err)
	assert.Equal(t, NumVector, e)

	e, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, OneHot, e)

	_, err = Parse("blosum")
	require.Error(t, err)
	assert.IsType(t, &msa.InvalidParameterError{}, err)
}

func TestEncodeOneHot(t *testing.T) {
	out := EncodeOneHot([]string{"AC", "-"}, 0)
	require.Len(t, out, 2)

	A := len(msa.Alphabet)
	assert.Len(t, out[0], 2*A)

	assert.Equal(t, 1.0, out[0][0])   // A at position 0
	assert.Equal(t, 1.0, out[0][A+1]) // C at position 1
	assert.Equal(t, 1.0, out[1][20])  // gap at position 0

	sum := 0.0
	for _, v := range out[1] {
		sum += v
	}
	assert.Equal(t, 1.0, sum, "padding positions stay empty")
}

func TestEncodeOneHotUnknownAndLowercase(t *testing.T) {
	out := EncodeOneHot([]string{"bm"}, 0)
	A := len(msa.Alphabet)
	assert.Equal(t, 1.0, out[0][21])   // B -> X
	assert.Equal(t, 1.0, out[0][A+10]) // m -> M
}

func TestEncodeNumVector(t *testing.T) {
	out := EncodeNumVector([]string{"ACD", "Y-"}, 0)
	assert.Equal(t, []float64{0, 1, 2}, out[0])
	assert.Equal(t, []float64{19, 20, -1}, out[1])

	cut := EncodeNumVector([]string{"ACD"}, 2)
	assert.Equal(t, []float64{0, 1}, cut[0])
}

func TestEncodeUnknownScheme(t *testing.T) {
	_, err := Encode(Encoding("blosum"), []string{"A"})
	assert.IsType(t, &msa.InvalidParameterError{}, err)
}

func TestFeatures(t *testing.T) {
	tbl := msa.FromSequences("A", "C")
	tbl, err := tbl.WithNumeric("score", []float64{0.5, 1.5})
	require.NoError(t, err)
	tbl, err = tbl.WithText("note", []string{"x", "y"})
	require.NoError(t, err)

	t.Run("appends numeric columns", func(t *testing.T) {
		f, err := Features(tbl, NumVector, []string{"score"})
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0, 0.5}, {1, 1.5}}, f)
	})

	t.Run("rejects text columns", func(t *testing.T) {
		_, err := Features(tbl, NumVector, []string{"note"})
		assert.IsType(t, &msa.SchemaError{}, err)
	})

	t.Run("rejects missing columns", func(t *testing.T) {
		_, err := Features(tbl, OneHot, []string{"missing"})
		assert.IsType(t, &msa.SchemaError{}, err)
	})

	t.Run("rejects non-finite values", func(t *testing.T) {
		for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			in, err := msa.FromSequences("A", "C").WithNumeric("w", []float64{1, bad})
			require.NoError(t, err)
			_, err = Features(in, OneHot, []string{"w"})
			var schema *msa.SchemaError
			require.ErrorAs(t, err, &schema)
			assert.Equal(t, "w", schema.Column)
			assert.Contains(t, schema.Reason, "row 1")
		}
	})

	t.Run("nil table", func(t *testing.T) {
		_, err := Features(nil, OneHot, nil)
		assert.IsType(t, &msa.SchemaError{}, err)
	})
}

func BenchmarkEncodeOneHot(b *testing.B) {
	seqs := make([]string, 500)
	for i := range seqs {
		seqs[i] = "MKVLAAGIVGLLLAQPAMA-KVLwyrsT"
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeOneHot(seqs, 0)
	}
}
