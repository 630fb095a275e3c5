// Package jsonl reads input datasets and appends refinement records as
// newline-delimited JSON.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// maxLine bounds a single dataset row. Generated contracts can be large.
const maxLine = 16 << 20

// Read decodes one T per non-blank line of r.
func Read[T any](r io.Reader) ([]T, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	var rows []T
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return rows, nil
}

// ReadFile decodes the JSONL file at path.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Read[T](f)
}

// LoadRequirements reads a requirement dataset. Rows without an id are
// numbered by their position so that a rerun maps to the same records.
func LoadRequirements(path string) ([]domain.Requirement, error) {
	reqs, err := ReadFile[domain.Requirement](path)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		if reqs[i].ID == "" {
			reqs[i].ID = "row-" + strconv.Itoa(i+1)
		}
	}
	return reqs, nil
}

// Sink appends records to a writer, one JSON object per line.
// Safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	enc    *json.Encoder
	closer io.Closer
}

var _ ports.RecordSink = (*Sink)(nil)

// NewSink wraps w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w, enc: json.NewEncoder(w)}
}

// OpenSink opens path for appending, creating it when missing.
func OpenSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output: %w", err)
	}
	s := NewSink(f)
	s.closer = f
	return s, nil
}

// Append writes rec as a single line.
func (s *Sink) Append(ctx context.Context, rec domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// Close closes the underlying file if the sink opened it.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
