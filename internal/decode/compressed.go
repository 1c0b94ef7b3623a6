// SPDX-License-Identifier: MIT
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"earshot/internal/analysis"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo.
const (
	mp3Channels   = 2
	mp3SampleSize = 2
)

func decodeMP3(r io.ReadSeeker) (analysis.Waveform, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return analysis.Waveform{}, fmt.Errorf("mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return analysis.Waveform{}, fmt.Errorf("mp3: %w", err)
	}

	samples := make([]float32, len(raw)/mp3SampleSize)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[mp3SampleSize*i:]))
		samples[i] = float32(v) / 32768.0
	}

	mono, err := MixDown(samples, mp3Channels)
	if err != nil {
		return analysis.Waveform{}, err
	}
	return analysis.NewWaveform(mono, float64(dec.SampleRate()))
}

func decodeVorbis(r io.ReadSeeker) (analysis.Waveform, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return analysis.Waveform{}, fmt.Errorf("vorbis: %w", err)
	}

	mono, err := MixDown(samples, format.Channels)
	if err != nil {
		return analysis.Waveform{}, err
	}
	return analysis.NewWaveform(mono, float64(format.SampleRate))
}
