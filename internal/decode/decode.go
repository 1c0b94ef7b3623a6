// SPDX-License-Identifier: MIT

// Package decode turns audio files into mono analysis waveforms. Formats are
// looked up by file extension.
package decode

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"earshot/internal/analysis"
	"earshot/internal/log"
)

var (
	// ErrUnsupportedFormat marks an extension or encoding no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNotWavFile indicates the stream is not a valid WAV file.
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrNotAiffFile indicates the stream is not a valid AIFF file.
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrBadLayout marks a header with an impossible channel count or rate.
	ErrBadLayout = errors.New("unsupported channel layout")
)

var logger = log.New("decode")

// Decoder reads one encoded stream into a mono Waveform.
type Decoder interface {
	Decode(r io.ReadSeeker) (analysis.Waveform, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.ReadSeeker) (analysis.Waveform, error)

func (f DecoderFunc) Decode(r io.ReadSeeker) (analysis.Waveform, error) { return f(r) }

var (
	registryMu sync.RWMutex
	registry   = map[string]Decoder{
		".wav":  DecoderFunc(decodeWAV),
		".wave": DecoderFunc(decodeWAV),
		".aif":  DecoderFunc(decodeAIFF),
		".aiff": DecoderFunc(decodeAIFF),
		".mp3":  DecoderFunc(decodeMP3),
		".ogg":  DecoderFunc(decodeVorbis),
		".oga":  DecoderFunc(decodeVorbis),
	}
)

// Register installs d for files ending in ext (e.g. ".flac"), replacing any
// existing decoder.
func Register(ext string, d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[normalizeExt(ext)] = d
}

// Extensions lists the registered extensions in sorted order.
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

func lookup(ext string) (Decoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[normalizeExt(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return d, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// File decodes the audio file at path, choosing the decoder by extension.
func File(path string) (analysis.Waveform, error) {
	d, err := lookup(filepath.Ext(path))
	if err != nil {
		return analysis.Waveform{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return analysis.Waveform{}, err
	}
	defer f.Close()

	w, err := d.Decode(f)
	if err != nil {
		return analysis.Waveform{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	logger.Debugf("%s: %d samples at %.0f Hz (%.2fs)", filepath.Base(path), len(w.Samples), w.SampleRate, w.Duration())
	return w, nil
}

// Decode decodes r with the decoder registered for ext.
func Decode(r io.ReadSeeker, ext string) (analysis.Waveform, error) {
	d, err := lookup(ext)
	if err != nil {
		return analysis.Waveform{}, err
	}
	return d.Decode(r)
}
