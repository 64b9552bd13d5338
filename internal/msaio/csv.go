package msaio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// ReadCSV parses a table with a header row. The sequence column is
// required; the header column is optional. Every other column becomes
// numeric when all of its non-empty cells parse as numbers, text otherwise.
func ReadCSV(r io.Reader) (*msa.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, msa.MissingSequences()
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	seqCol, headerCol := -1, -1
	for i, name := range names {
		names[i] = strings.TrimSpace(name)
		switch names[i] {
		case msa.SequenceColumn:
			seqCol = i
		case msa.HeaderColumn:
			headerCol = i
		}
	}
	if seqCol < 0 {
		return nil, msa.MissingSequences()
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	seqs := make([]string, len(records))
	var headers []string
	if headerCol >= 0 {
		headers = make([]string, len(records))
	}
	for i, rec := range records {
		seqs[i] = rec[seqCol]
		if headerCol >= 0 {
			headers[i] = rec[headerCol]
		}
	}

	t, err := msa.New(headers, seqs)
	if err != nil {
		return nil, err
	}

	for j, name := range names {
		if j == seqCol || j == headerCol {
			continue
		}
		cells := make([]string, len(records))
		for i, rec := range records {
			cells[i] = rec[j]
		}
		if values, ok := parseNumeric(cells); ok {
			t, err = t.WithNumeric(name, values)
		} else {
			t, err = t.WithText(name, cells)
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseNumeric converts cells to floats. Empty cells become NaN; a column
// with no values at all stays text.
func parseNumeric(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	seen := false
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
		seen = true
	}
	return values, seen
}

// WriteCSV writes header, sequence, then every auxiliary column.
func WriteCSV(w io.Writer, t *msa.Table) error {
	if err := msa.RequireSequences(t); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	aux := t.Columns()
	columns := make([]*msa.Column, len(aux))
	for k, name := range aux {
		columns[k], _ = t.Column(name)
	}

	record := append([]string{msa.HeaderColumn, msa.SequenceColumn}, aux...)
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		record = record[:0]
		record = append(record, t.Header(i), t.Sequence(i))
		for _, c := range columns {
			record = append(record, c.Format(i))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
