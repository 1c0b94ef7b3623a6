// SPDX-License-Identifier: MIT
package decode

import (
	"fmt"
	"io"

	"earshot/internal/analysis"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

func decodeWAV(r io.ReadSeeker) (analysis.Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return analysis.Waveform{}, ErrNotWavFile
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return analysis.Waveform{}, fmt.Errorf("%w: WAV encoding %d is not integer PCM", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return analysis.Waveform{}, err
	}
	return fromIntBuffer(buf, int(dec.BitDepth))
}

func decodeAIFF(r io.ReadSeeker) (analysis.Waveform, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return analysis.Waveform{}, ErrNotAiffFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return analysis.Waveform{}, err
	}
	return fromIntBuffer(buf, int(dec.BitDepth))
}

// fromIntBuffer down-mixes a go-audio buffer. 8-bit data is rejected since
// WAV stores it unsigned and AIFF signed.
func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) (analysis.Waveform, error) {
	if buf == nil || buf.Format == nil {
		return analysis.Waveform{}, fmt.Errorf("%w: missing format chunk", ErrBadLayout)
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return analysis.Waveform{}, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}

	mono, err := MixDownPCM(buf.Data, buf.Format.NumChannels, bitDepth)
	if err != nil {
		return analysis.Waveform{}, err
	}
	return analysis.NewWaveform(mono, float64(buf.Format.SampleRate))
}
