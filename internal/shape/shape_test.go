package shape

import (
	"testing"

	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, seqs ...string) *msa.Table {
	t.Helper()
	headers := make([]string, len(seqs))
	for i := range seqs {
		headers[i] = string(rune('a' + i))
	}
	tbl, err := msa.New(headers, seqs)
	require.NoError(t, err)
	return tbl
}

func TestUnifyLength(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   []string
	}{
		{"first", First, []string{"MKV", "MKV", "M--"}},
		{"max", Max, []string{"MKV--", "MKVLA", "M----"}},
		{"min", Min, []string{"M", "M", "M"}},
		{"exact", Exactly(4), []string{"MKV-", "MKVL", "M---"}},
		{"zero", Exactly(0), []string{"", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := table(t, "MKV", "MKVLA", "M")
			out, err := UnifyLength(in, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Sequences())
			assert.Equal(t, []string{"MKV", "MKVLA", "M"}, in.Sequences(), "input untouched")
		})
	}
}

func TestUnifyLengthIdempotent(t *testing.T) {
	in := table(t, "MKV", "MKVLA", "M", "")
	for _, target := range []Target{First, Max, Min, Exactly(2), Exactly(7)} {
		once, err := UnifyLength(in, target)
		require.NoError(t, err)
		n, err := target.Resolve(in)
		require.NoError(t, err)
		twice, err := UnifyLength(once, Exactly(n))
		require.NoError(t, err)
		assert.True(t, once.Equal(twice), target.String())
	}
}

func TestUnifyLengthErrors(t *testing.T) {
	_, err := UnifyLength(nil, First)
	assert.IsType(t, &msa.SchemaError{}, err)

	_, err = UnifyLength(table(t, "A"), Exactly(-1))
	assert.IsType(t, &msa.InvalidParameterError{}, err)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"first", First, false},
		{"MAX", Max, false},
		{"min", Min, false},
		{"12", Exactly(12), false},
		{"-3", Target{}, true},
		{"longest", Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				assert.IsType(t, &msa.InvalidParameterError{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceSequences(t *testing.T) {
	in := table(t, "MKVLA", "MK")
	out, err := SliceSequences(in, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"KVL", "K"}, out.Sequences())
	assert.Equal(t, 2, out.Len())

	_, err = SliceSequences(in, 3, 1)
	assert.IsType(t, &msa.InvalidParameterError{}, err)
	_, err = SliceSequences(in, -1, 1)
	assert.IsType(t, &msa.InvalidParameterError{}, err)
}

func TestSliceRows(t *testing.T) {
	in := table(t, "A", "C", "D", "E")
	out, err := SliceRows(in, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, out.Sequences())

	_, err = SliceRows(in, 3, 1)
	assert.IsType(t, &msa.InvalidParameterError{}, err)
}

func TestAdjustDepth(t *testing.T) {
	in := table(t, "MKV-", "MKVL", "MK--")

	t.Run("extend cyclically", func(t *testing.T) {
		out, err := AdjustDepth(in, 5)
		require.NoError(t, err)
		require.Equal(t, 5, out.Len())
		assert.Equal(t, []string{"a", "b", "c", "a", "b"}, out.Headers())
		assert.Equal(t, []string{"MKV-", "MKVL", "MK--", "MKV-", "MKVL"}, out.Sequences())
	})

	t.Run("crop", func(t *testing.T) {
		out, err := AdjustDepth(in, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, out.Headers())
	})

	t.Run("equal", func(t *testing.T) {
		out, err := AdjustDepth(in, 3)
		require.NoError(t, err)
		assert.True(t, in.Equal(out))
	})

	t.Run("zero", func(t *testing.T) {
		out, err := AdjustDepth(in, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("negative", func(t *testing.T) {
		_, err := AdjustDepth(in, -1)
		assert.IsType(t, &msa.InvalidParameterError{}, err)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := AdjustDepth(table(t), 3)
		assert.IsType(t, &msa.InvalidParameterError{}, err)
	})
}

func TestAdjustDepthProperty(t *testing.T) {
	in := table(t, "A", "C", "D", "E", "F", "G", "H")
	for d := 0; d <= 20; d++ {
		out, err := AdjustDepth(in, d)
		require.NoError(t, err)
		require.Equal(t, d, out.Len())
		if d <= in.Len() {
			assert.True(t, in.Range(0, d).Equal(out))
		}
		for i := 0; i < d; i++ {
			assert.Equal(t, in.Sequence(i%in.Len()), out.Sequence(i))
		}
	}
}

func TestExtendAndCrop(t *testing.T) {
	in := table(t, "A", "C", "D")

	out, err := ExtendToDepth(in, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len(), "extend never shrinks")

	out, err = CropToDepth(in, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len(), "crop never grows")

	out, err = CropToDepth(in, -1)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}
