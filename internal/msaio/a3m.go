// Package msaio reads and writes alignment tables as A3M/FASTA and CSV.
package msaio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// maxLineSize caps a single sequence line; deep alignments of long proteins
// exceed bufio's default.
const maxLineSize = 16 * 1024 * 1024

// ReadA3M parses A3M or FASTA text. Sequence lines are concatenated until
// the next header. Sequences that appear before any header get synthetic
// headers. Lowercase insertion letters are kept as they are.
func ReadA3M(r io.Reader) (*msa.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var headers, seqs []string
	var current strings.Builder
	open := false
	flush := func() {
		if open {
			seqs = append(seqs, current.String())
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, ">"):
			flush()
			headers = append(headers, strings.TrimSpace(line[1:]))
			open = true
		case !open:
			headers = append(headers, msa.SyntheticHeader(len(headers)))
			seqs = append(seqs, line)
		default:
			current.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading a3m: %w", err)
	}
	flush()

	return msa.New(headers, seqs)
}

// WriteA3M writes one header and one sequence line per row. Headers are
// written as stored, so an empty header gives a bare ">" line.
func WriteA3M(w io.Writer, t *msa.Table) error {
	if err := msa.RequireSequences(t); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < t.Len(); i++ {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", t.Header(i), t.Sequence(i)); err != nil {
			return fmt.Errorf("writing a3m: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing a3m: %w", err)
	}
	return nil
}
