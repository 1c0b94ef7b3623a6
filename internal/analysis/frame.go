// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// Chroma covers C1 through B7.
	chromaLowNote  = 24
	chromaHighNote = 107

	magnitudeFloor = 1e-10
	onsetTopDB     = 80.0
)

// Frame is one short-time analysis frame. Chroma index 0 is C.
type Frame struct {
	Index     int         `json:"index"`
	Time      float64     `json:"time"`
	Magnitude []float64   `json:"-"`
	Chroma    [12]float64 `json:"chroma"`
	RMS       float64     `json:"rms"`
	Onset     float64     `json:"onset"`
	ZCR       float64     `json:"zcr"`
}

// FrameSeries is the immutable output of Transform. Frame i is centred on
// sample i*HopSize and stamped at i*HopSize/SampleRate seconds.
type FrameSeries struct {
	Frames     []Frame
	HopSize    int
	FrameSize  int
	SampleRate float64
	Duration   float64
}

// Transform cuts w into centred, zero-padded frames and computes each
// frame's magnitude spectrum, chroma, RMS, zero-crossing rate and onset
// strength. The series holds ceil(len(w)/hop) frames.
func Transform(w Waveform, cfg FrameConfig) (*FrameSeries, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hop, size := cfg.layout(len(w.Samples))
	s, err := newSTFT(size, cfg.Window)
	if err != nil {
		return nil, err
	}

	count := (len(w.Samples) + hop - 1) / hop
	fs := &FrameSeries{
		Frames:     make([]Frame, count),
		HopSize:    hop,
		FrameSize:  size,
		SampleRate: w.SampleRate,
		Duration:   w.Duration(),
	}

	chroma := newChromaMap(fs)
	bins := size/2 + 1

	for i := range count {
		center := i * hop
		mag := make([]float64, bins)
		rms, zcr := s.analyze(w.Samples, center, mag)
		fs.Frames[i] = Frame{
			Index:     i,
			Time:      float64(center) / w.SampleRate,
			Magnitude: mag,
			Chroma:    chroma.fold(mag),
			RMS:       rms,
			ZCR:       zcr,
		}
	}

	fs.computeOnsets()
	return fs, nil
}

// computeOnsets fills Frame.Onset with the mean half-wave-rectified rise of
// the dB spectrum over the previous frame. Levels are clamped to 80 dB below
// the loudest bin of the whole series.
func (fs *FrameSeries) computeOnsets() {
	if len(fs.Frames) == 0 {
		return
	}

	peak := magnitudeFloor
	for _, f := range fs.Frames {
		peak = math.Max(peak, floats.Max(f.Magnitude))
	}
	floor := toDB(peak) - onsetTopDB

	bins := fs.Bins()
	prev := make([]float64, bins)
	cur := make([]float64, bins)

	for i := range fs.Frames {
		for k, m := range fs.Frames[i].Magnitude {
			cur[k] = math.Max(toDB(m), floor)
		}
		if i > 0 {
			flux := 0.0
			for k := range cur {
				if d := cur[k] - prev[k]; d > 0 {
					flux += d
				}
			}
			fs.Frames[i].Onset = flux / float64(bins)
		}
		prev, cur = cur, prev
	}
}

func toDB(m float64) float64 {
	return 20 * math.Log10(math.Max(m, magnitudeFloor))
}

// chromaMap assigns FFT bins to MIDI notes so that each note contributes
// its mean bin power, independent of how many bins it spans.
type chromaMap struct {
	note  []int // MIDI note per bin, -1 when outside the chroma range.
	count [128]int
}

func newChromaMap(fs *FrameSeries) *chromaMap {
	bins := fs.Bins()
	cm := &chromaMap{note: make([]int, bins)}
	for k := range bins {
		cm.note[k] = -1
		if k == 0 {
			continue
		}
		midi := 69 + 12*math.Log2(fs.FrequencyForBin(k)/440)
		n := int(math.Round(midi))
		if n < chromaLowNote || n > chromaHighNote {
			continue
		}
		cm.note[k] = n
		cm.count[n]++
	}
	return cm
}

// fold returns the 12 pitch-class energies of one magnitude spectrum scaled
// so the strongest class is 1. Silent spectra fold to zeros.
func (cm *chromaMap) fold(mag []float64) [12]float64 {
	var power [128]float64
	for k, n := range cm.note {
		if n >= 0 {
			power[n] += mag[k] * mag[k]
		}
	}

	var chroma [12]float64
	for n := chromaLowNote; n <= chromaHighNote; n++ {
		if cm.count[n] > 0 {
			chroma[n%12] += power[n] / float64(cm.count[n])
		}
	}

	peak := floats.Max(chroma[:])
	if peak > 0 {
		floats.Scale(1/peak, chroma[:])
	}
	return chroma
}

// Len returns the number of frames.
func (fs *FrameSeries) Len() int { return len(fs.Frames) }

// Bins returns the number of magnitude bins per frame.
func (fs *FrameSeries) Bins() int { return fs.FrameSize/2 + 1 }

// FrameRate returns frames per second.
func (fs *FrameSeries) FrameRate() float64 {
	return fs.SampleRate / float64(fs.HopSize)
}

// BinWidth returns the frequency resolution in Hz.
func (fs *FrameSeries) BinWidth() float64 {
	return fs.SampleRate / float64(fs.FrameSize)
}

// FrequencyForBin returns the center frequency (Hz) for a given FFT bin
// index, or 0 when the index is out of range.
func (fs *FrameSeries) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= fs.Bins() {
		return 0
	}
	return float64(binIndex) * fs.BinWidth()
}

// Times returns every frame timestamp.
func (fs *FrameSeries) Times() []float64 {
	return fs.collect(func(f Frame) float64 { return f.Time })
}

// RMS returns the per-frame RMS energy.
func (fs *FrameSeries) RMS() []float64 {
	return fs.collect(func(f Frame) float64 { return f.RMS })
}

// Onsets returns the per-frame onset strength.
func (fs *FrameSeries) Onsets() []float64 {
	return fs.collect(func(f Frame) float64 { return f.Onset })
}

// ZCR returns the per-frame zero-crossing rate.
func (fs *FrameSeries) ZCR() []float64 {
	return fs.collect(func(f Frame) float64 { return f.ZCR })
}

// Chroma returns the per-frame chroma vectors.
func (fs *FrameSeries) Chroma() [][12]float64 {
	out := make([][12]float64, len(fs.Frames))
	for i, f := range fs.Frames {
		out[i] = f.Chroma
	}
	return out
}

// Timeline wraps per-frame values with this series' timestamps.
func (fs *FrameSeries) Timeline(name string, values []float64) Timeline {
	return newTimeline(name, fs.Times(), values)
}

func (fs *FrameSeries) collect(get func(Frame) float64) []float64 {
	out := make([]float64, len(fs.Frames))
	for i, f := range fs.Frames {
		out[i] = get(f)
	}
	return out
}

func (fs *FrameSeries) String() string {
	return fmt.Sprintf("FrameSeries(frames=%d hop=%d size=%d rate=%.0fHz)", fs.Len(), fs.HopSize, fs.FrameSize, fs.SampleRate)
}
