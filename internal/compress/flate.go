// Package compress implements the payload compression used for fragment
// transport.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultMaxSize bounds decompressed output.
const DefaultMaxSize = 4 << 20

// ErrTooLarge is returned when decompressed text exceeds the size limit.
var ErrTooLarge = errors.New("decompressed payload exceeds size limit")

// Flate compresses text with raw DEFLATE.
type Flate struct {
	level   int
	maxSize int64
}

// Option configures a Flate codec.
type Option func(*Flate)

// WithLevel sets the DEFLATE level, from flate.HuffmanOnly to flate.BestCompression.
func WithLevel(level int) Option {
	return func(f *Flate) { f.level = level }
}

// WithMaxSize sets the decompressed size limit in bytes.
func WithMaxSize(n int64) Option {
	return func(f *Flate) { f.maxSize = n }
}

// NewFlate returns a codec at best compression.
func NewFlate(opts ...Option) *Flate {
	f := &Flate{level: flate.BestCompression, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Compress deflates text.
func (f *Flate) Compress(text string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, f.level)
	if err != nil {
		return nil, fmt.Errorf("flate writer: %w", err)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return nil, fmt.Errorf("flate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flate close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates data produced by Compress.
func (f *Flate) Decompress(data []byte) (string, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, f.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("flate read: %w", err)
	}
	if int64(len(out)) > f.maxSize {
		return "", ErrTooLarge
	}
	return string(out), nil
}
