// Package msa provides the alignment table shared by every msaflow transform.
//
// A Table is an ordered list of rows. Each row has a header and a sequence,
// and the table may carry any number of auxiliary columns, either numeric or
// text. Row 0 is the query sequence wherever a reference is needed.
//
// Tables are treated as values: every method that changes content returns a
// new Table and leaves the receiver untouched.
package msa

import (
	"fmt"
	"math"
	"strconv"
)

// Reserved and derived column names.
const (
	HeaderColumn    = "header"
	SequenceColumn  = "sequence"
	ClusterIDColumn = "cluster_id"

	// NoiseLabel is the cluster id given to rows no cluster could reach.
	NoiseLabel = -1
)

// ColumnKind tells numeric auxiliary columns from text ones.
type ColumnKind int

const (
	// Numeric columns hold float64 values; NaN marks a missing value.
	Numeric ColumnKind = iota
	// Text columns hold strings.
	Text
)

func (k ColumnKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Column is an auxiliary column of a Table.
type Column struct {
	Name   string
	Kind   ColumnKind
	Floats []float64
	Texts  []string
}

func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Texts != nil {
		out.Texts = append([]string(nil), c.Texts...)
	}
	return out
}

func (c *Column) len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Texts)
}

// Format renders the value at row i as text.
func (c *Column) Format(i int) string {
	if c.Kind == Text {
		return c.Texts[i]
	}
	v := c.Floats[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Row is a typed view of a single table row.
type Row struct {
	Header   string
	Sequence string
	Numeric  map[string]float64
	Text     map[string]string
}

// Table is an alignment: headers, sequences and auxiliary columns.
type Table struct {
	headers   []string
	sequences []string
	columns   []*Column
}

// New creates a table from parallel header and sequence slices.
// A nil headers slice yields synthetic headers.
func New(headers, sequences []string) (*Table, error) {
	if headers == nil {
		headers = SyntheticHeaders(len(sequences))
	}
	if len(headers) != len(sequences) {
		return nil, &ShapeMismatchError{Op: "new table", Want: len(sequences), Got: len(headers)}
	}
	return &Table{
		headers:   append([]string(nil), headers...),
		sequences: append([]string(nil), sequences...),
	}, nil
}

// FromSequences creates a table with synthetic headers.
func FromSequences(sequences ...string) *Table {
	t, _ := New(nil, sequences)
	return t
}

// SyntheticHeaders returns the headers given to rows imported without one.
func SyntheticHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = SyntheticHeader(i)
	}
	return out
}

// SyntheticHeader names row i when no header is known.
func SyntheticHeader(i int) string {
	return fmt.Sprintf("seq%d", i)
}

// Len returns the depth of the table.
func (t *Table) Len() int {
	return len(t.sequences)
}

// Header returns the header of row i.
func (t *Table) Header(i int) string {
	return t.headers[i]
}

// Sequence returns the sequence of row i.
func (t *Table) Sequence(i int) string {
	return t.sequences[i]
}

// Query returns the sequence of row 0, or "" for an empty table.
func (t *Table) Query() string {
	if len(t.sequences) == 0 {
		return ""
	}
	return t.sequences[0]
}

// Headers returns a copy of all headers.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// Sequences returns a copy of all sequences.
func (t *Table) Sequences() []string {
	return append([]string(nil), t.sequences...)
}

// Columns returns the names of the auxiliary columns in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) column(name string) (*Column, int) {
	for i, c := range t.columns {
		if c.Name == name {
			return c, i
		}
	}
	return nil, -1
}

// HasColumn reports whether name is a column of the table, reserved names included.
func (t *Table) HasColumn(name string) bool {
	if name == HeaderColumn || name == SequenceColumn {
		return true
	}
	c, _ := t.column(name)
	return c != nil
}

// Column returns a copy of the named auxiliary column.
func (t *Table) Column(name string) (*Column, bool) {
	c, _ := t.column(name)
	if c == nil {
		return nil, false
	}
	return c.clone(), true
}

// NumericColumn returns the values of a numeric column or a SchemaError.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	c, _ := t.column(name)
	switch {
	case c == nil:
		return nil, &SchemaError{Column: name, Reason: "column not found"}
	case c.Kind != Numeric:
		return nil, &SchemaError{Column: name, Reason: "column is not numeric"}
	}
	return append([]float64(nil), c.Floats...), nil
}

// Row returns a typed view of row i.
func (t *Table) Row(i int) Row {
	r := Row{
		Header:   t.headers[i],
		Sequence: t.sequences[i],
		Numeric:  make(map[string]float64),
		Text:     make(map[string]string),
	}
	for _, c := range t.columns {
		if c.Kind == Numeric {
			r.Numeric[c.Name] = c.Floats[i]
		} else {
			r.Text[c.Name] = c.Texts[i]
		}
	}
	return r
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		headers:   append([]string(nil), t.headers...),
		sequences: append([]string(nil), t.sequences...),
		columns:   make([]*Column, len(t.columns)),
	}
	for i, c := range t.columns {
		out.columns[i] = c.clone()
	}
	return out
}

// WithSequences returns a copy of the table with its sequences replaced.
func (t *Table) WithSequences(sequences []string) (*Table, error) {
	if len(sequences) != t.Len() {
		return nil, &ShapeMismatchError{Op: "replace sequences", Want: t.Len(), Got: len(sequences)}
	}
	out := t.Clone()
	copy(out.sequences, sequences)
	return out, nil
}

// WithNumeric returns a copy of the table with a numeric column added or replaced.
func (t *Table) WithNumeric(name string, values []float64) (*Table, error) {
	return t.withColumn(&Column{Name: name, Kind: Numeric, Floats: append([]float64(nil), values...)})
}

// WithText returns a copy of the table with a text column added or replaced.
func (t *Table) WithText(name string, values []string) (*Table, error) {
	return t.withColumn(&Column{Name: name, Kind: Text, Texts: append([]string(nil), values...)})
}

func (t *Table) withColumn(c *Column) (*Table, error) {
	if c.Name == HeaderColumn || c.Name == SequenceColumn {
		return nil, &SchemaError{Column: c.Name, Reason: "reserved column name"}
	}
	if c.len() != t.Len() {
		return nil, &ShapeMismatchError{Op: "add column " + c.Name, Want: t.Len(), Got: c.len()}
	}
	out := t.Clone()
	if _, i := out.column(c.Name); i >= 0 {
		out.columns[i] = c
	} else {
		out.columns = append(out.columns, c)
	}
	return out, nil
}

// WithoutColumn returns a copy of the table without the named auxiliary column.
func (t *Table) WithoutColumn(name string) *Table {
	out := t.Clone()
	if _, i := out.column(name); i >= 0 {
		out.columns = append(out.columns[:i], out.columns[i+1:]...)
	}
	return out
}

// Take returns a new table made of the rows at the given indices, in order.
// Indices may repeat.
func (t *Table) Take(indices []int) *Table {
	out := &Table{
		headers:   make([]string, len(indices)),
		sequences: make([]string, len(indices)),
		columns:   make([]*Column, len(t.columns)),
	}
	for j, i := range indices {
		out.headers[j] = t.headers[i]
		out.sequences[j] = t.sequences[i]
	}
	for k, c := range t.columns {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == Numeric {
			nc.Floats = make([]float64, len(indices))
			for j, i := range indices {
				nc.Floats[j] = c.Floats[i]
			}
		} else {
			nc.Texts = make([]string, len(indices))
			for j, i := range indices {
				nc.Texts[j] = c.Texts[i]
			}
		}
		out.columns[k] = nc
	}
	return out
}

// Range returns rows [start, end) clamped to the table bounds.
func (t *Table) Range(start, end int) *Table {
	start = clamp(start, 0, t.Len())
	end = clamp(end, start, t.Len())
	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return t.Take(indices)
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	indices := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return t.Take(indices)
}

// ClusterIDs returns the cluster labels of the table, if it has been clustered.
func (t *Table) ClusterIDs() ([]int, bool) {
	c, _ := t.column(ClusterIDColumn)
	if c == nil || c.Kind != Numeric {
		return nil, false
	}
	ids := make([]int, len(c.Floats))
	for i, v := range c.Floats {
		ids[i] = int(v)
	}
	return ids, true
}

// WithClusterIDs returns a copy of the table labelled with ids.
func (t *Table) WithClusterIDs(ids []int) (*Table, error) {
	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = float64(id)
	}
	return t.WithNumeric(ClusterIDColumn, values)
}

// Concat stacks tables vertically. Columns missing from a table are filled
// with NaN or "", and a column that is numeric in one table and text in
// another becomes text.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	total := 0
	for _, t := range tables {
		total += t.Len()
	}

	kinds := make(map[string]ColumnKind)
	var order []string
	for _, t := range tables {
		for _, c := range t.columns {
			k, seen := kinds[c.Name]
			if !seen {
				order = append(order, c.Name)
				kinds[c.Name] = c.Kind
			} else if k != c.Kind {
				kinds[c.Name] = Text
			}
		}
	}

	out.headers = make([]string, 0, total)
	out.sequences = make([]string, 0, total)
	for _, t := range tables {
		out.headers = append(out.headers, t.headers...)
		out.sequences = append(out.sequences, t.sequences...)
	}

	for _, name := range order {
		nc := &Column{Name: name, Kind: kinds[name]}
		for _, t := range tables {
			c, _ := t.column(name)
			for i := 0; i < t.Len(); i++ {
				switch {
				case nc.Kind == Numeric && c == nil:
					nc.Floats = append(nc.Floats, math.NaN())
				case nc.Kind == Numeric:
					nc.Floats = append(nc.Floats, c.Floats[i])
				case c == nil:
					nc.Texts = append(nc.Texts, "")
				default:
					nc.Texts = append(nc.Texts, c.Format(i))
				}
			}
		}
		out.columns = append(out.columns, nc)
	}
	return out
}

// Equal reports whether two tables hold the same rows and columns.
func (t *Table) Equal(other *Table) bool {
	if other == nil || t.Len() != other.Len() || len(t.columns) != len(other.columns) {
		return false
	}
	for i := range t.sequences {
		if t.headers[i] != other.headers[i] || t.sequences[i] != other.sequences[i] {
			return false
		}
	}
	for k, c := range t.columns {
		o := other.columns[k]
		if c.Name != o.Name || c.Kind != o.Kind {
			return false
		}
		for i := 0; i < t.Len(); i++ {
			if c.Format(i) != o.Format(i) {
				return false
			}
		}
	}
	return true
}

// MaxLength returns the length of the longest sequence.
func (t *Table) MaxLength() int {
	n := 0
	for _, s := range t.sequences {
		n = max(n, len(s))
	}
	return n
}

// MinLength returns the length of the shortest sequence, 0 for an empty table.
func (t *Table) MinLength() int {
	if len(t.sequences) == 0 {
		return 0
	}
	n := len(t.sequences[0])
	for _, s := range t.sequences[1:] {
		n = min(n, len(s))
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vetted returns a copy of the table with every sequence passed through Vet.
func (t *Table) Vetted() *Table {
	out := t.Clone()
	for i, s := range out.sequences {
		out.sequences[i] = Vet(s)
	}
	return out
}
