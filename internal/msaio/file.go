package msaio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Format names a supported file format.
type Format string

const (
	A3M Format = "a3m"
	CSV Format = "csv"
)

// ParseFormat validates a format name. "fasta" and "fa" read as A3M.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "a3m", "fasta", "fa", "fas":
		return A3M, nil
	case "csv":
		return CSV, nil
	default:
		return "", &msa.InvalidParameterError{Name: "format", Value: name, Reason: "expected a3m, fasta or csv"}
	}
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Read parses r in the given format.
func Read(r io.Reader, f Format) (*msa.Table, error) {
	switch f {
	case A3M:
		return ReadA3M(r)
	case CSV:
		return ReadCSV(r)
	default:
		_, err := ParseFormat(string(f))
		return nil, err
	}
}

// Write serializes t to w in the given format.
func Write(w io.Writer, t *msa.Table, f Format) error {
	switch f {
	case A3M:
		return WriteA3M(w, t)
	case CSV:
		return WriteCSV(w, t)
	default:
		_, err := ParseFormat(string(f))
		return err
	}
}

// ReadFile loads a table, choosing the format from the extension.
func ReadFile(path string) (*msa.Table, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	t, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile saves a table, choosing the format from the extension.
func WriteFile(path string, t *msa.Table) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(file, t, f); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}
