// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"earshot/internal/analysis"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM = 1
	wavChunk     = 4096 // samples per encoder write
)

// RecordingPath returns a timestamped WAV file name inside dir.
func RecordingPath(dir string, at time.Time) string {
	return filepath.Join(dir, "earshot-"+at.Format("20060102-150405")+".wav")
}

// SaveWAV writes w as a mono integer PCM WAV file at bitDepth (16, 24 or
// 32), creating parent directories as needed. Samples outside [-1, 1] are
// clipped.
func SaveWAV(path string, w analysis.Waveform, bitDepth int) (err error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d", analysis.ErrInvalidInput, bitDepth)
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	sampleRate := int(math.Round(w.SampleRate))
	encoder := wav.NewEncoder(file, sampleRate, bitDepth, 1, wavFormatPCM)

	// Reusable buffer for format conversion.
	sampleBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, wavChunk),
		SourceBitDepth: bitDepth,
	}
	peak := float64(int64(1)<<(bitDepth-1)) - 1

	for start := 0; start < len(w.Samples); start += wavChunk {
		chunk := w.Samples[start:min(start+wavChunk, len(w.Samples))]
		sampleBuf.Data = sampleBuf.Data[:len(chunk)]
		for i, s := range chunk {
			sampleBuf.Data[i] = int(math.Round(max(-1, min(1, s)) * peak))
		}
		if err := encoder.Write(sampleBuf); err != nil {
			return fmt.Errorf("writing WAV data: %w", err)
		}
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalizing WAV file: %w", err)
	}
	logger.Infof("saved %.2fs clip to %s", w.Duration(), path)
	return nil
}
