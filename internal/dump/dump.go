// Package dump stores captured samples on disk for offline decoding.
//
// A dump holds two parallel sequences, sample times in seconds since capture
// start and pin levels:
//
//	{"times": [1.000012, 1.000037, ...], "levels": [0, 1, ...]}
//
// Files ending in .zst or .gz are compressed.
package dump

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/sweeney/rfsniffer/internal/logic"
)

// File is the serialized form of a capture.
type File struct {
	Times  []float64 `json:"times"`
	Levels []int     `json:"levels"`
}

// FromSamples converts samples to their serialized form.
func FromSamples(samples []logic.Sample) File {
	f := File{
		Times:  make([]float64, len(samples)),
		Levels: make([]int, len(samples)),
	}
	for i, s := range samples {
		f.Times[i] = s.At.Seconds()
		f.Levels[i] = int(s.Level)
	}
	return f
}

// Samples validates the file and converts it back to samples.
func (f File) Samples() ([]logic.Sample, error) {
	if len(f.Times) != len(f.Levels) {
		return nil, fmt.Errorf("length mismatch: %d times, %d levels", len(f.Times), len(f.Levels))
	}
	samples := make([]logic.Sample, len(f.Times))
	var prev time.Duration
	for i, t := range f.Times {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, fmt.Errorf("sample %d: invalid time %v", i, t)
		}
		at := time.Duration(math.Round(t * float64(time.Second)))
		if i > 0 && at < prev {
			return nil, fmt.Errorf("sample %d: time %v before previous sample", i, t)
		}
		lv := f.Levels[i]
		if lv != 0 && lv != 1 {
			return nil, fmt.Errorf("sample %d: invalid level %d", i, lv)
		}
		samples[i] = logic.Sample{At: at, Level: logic.Level(lv)}
		prev = at
	}
	return samples, nil
}

// Write encodes samples as JSON to w.
func Write(w io.Writer, samples []logic.Sample) error {
	if err := json.NewEncoder(w).Encode(FromSamples(samples)); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return nil
}

// Read decodes samples from r.
func Read(r io.Reader) ([]logic.Sample, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	return f.Samples()
}

// Save writes samples to path, compressing by extension.
func Save(path string, samples []logic.Sample) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close dump: %w", cerr)
		}
	}()

	w, err := compressor(path, out)
	if err != nil {
		return err
	}
	if err := Write(w, samples); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}
	return nil
}

// Load reads samples from path, decompressing by extension.
func Load(path string) ([]logic.Sample, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer in.Close()

	r, err := decompressor(path, in)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	samples, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(path string, w io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	case ".gz":
		return gzip.NewWriter(w), nil
	}
	return nopWriteCloser{w}, nil
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func decompressor(path string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zstdReadCloser{dec}, nil
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("gzip reader: empty file")
			}
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	}
	return io.NopCloser(r), nil
}
