package journal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
)

const maxLineSize = 16 * 1024 * 1024

var (
	// ErrNilWriter is returned by NewWriter for a nil io.Writer.
	ErrNilWriter = errors.New("journal writer must not be nil")

	// ErrAppendingFailed is returned when an envelope could not be written.
	ErrAppendingFailed = errors.New("appending to journal failed")

	// ErrReadingFailed is returned when the journal could not be read.
	ErrReadingFailed = errors.New("reading journal failed")

	// ErrDecodingFailed is returned when a journal line is not a valid envelope.
	ErrDecodingFailed = errors.New("decoding journal line failed")
)

// Writer appends envelopes to an io.Writer, one JSON document per line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer appending to w.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	return &Writer{w: w}, nil
}

// Append writes one envelope. Concurrent calls are serialized.
func (j *Writer) Append(envelope shell.EventEnvelope) error {
	data, err := shell.EventEnvelopeToJSON(envelope)
	if err != nil {
		return errors.Join(ErrAppendingFailed, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(append(data, '\n')); err != nil {
		return errors.Join(ErrAppendingFailed, err)
	}

	return nil
}

// ApplyFunc receives the replayed envelopes in journal order.
type ApplyFunc func(ctx context.Context, envelope shell.EventEnvelope) error

// Replay decodes r line by line and hands every envelope to apply.
// Blank lines are skipped. Replay stops at the first error and returns how many envelopes were applied.
func Replay(ctx context.Context, r io.Reader, apply ApplyFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	applied := 0
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		if err := ctx.Err(); err != nil {
			return applied, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		envelope, err := shell.EventEnvelopeFromJSON(line)
		if err != nil {
			return applied, errors.Join(ErrDecodingFailed, fmt.Errorf("line %d: %w", lineNumber, err))
		}

		if err := apply(ctx, envelope); err != nil {
			return applied, err
		}

		applied++
	}

	if err := scanner.Err(); err != nil {
		return applied, errors.Join(ErrReadingFailed, err)
	}

	return applied, nil
}
