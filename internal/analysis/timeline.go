// SPDX-License-Identifier: MIT
package analysis

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Timeline is a named series of per-frame values. Times and Values always
// have the same length, and timelines derived from one FrameSeries share
// their Times.
type Timeline struct {
	Name   string    `json:"name"`
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// Point is one (time, value) sample of a Timeline.
type Point struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Event marks a detected moment: a peak, valley, tension transition or
// plosive.
type Event struct {
	Frame     int     `json:"frame"`
	Time      float64 `json:"time"`
	Magnitude float64 `json:"magnitude"`
}

func newTimeline(name string, times, values []float64) Timeline {
	return Timeline{Name: name, Times: times, Values: values}
}

// Len returns the number of points.
func (t Timeline) Len() int { return len(t.Values) }

// At returns point i.
func (t Timeline) At(i int) Point {
	return Point{Time: t.Times[i], Value: t.Values[i]}
}

// Points expands the timeline into (time, value) pairs.
func (t Timeline) Points() []Point {
	points := make([]Point, t.Len())
	for i := range points {
		points[i] = t.At(i)
	}
	return points
}

// Mean returns the arithmetic mean of the values, or 0 for an empty timeline.
func (t Timeline) Mean() float64 {
	if t.Len() == 0 {
		return 0
	}
	return stat.Mean(t.Values, nil)
}

// eventsAt builds events for the given frame indices of values.
func eventsAt(indices []int, times, values []float64) []Event {
	events := make([]Event, 0, len(indices))
	for _, i := range indices {
		events = append(events, Event{Frame: i, Time: times[i], Magnitude: values[i]})
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return events
}

// firstN returns at most n leading events.
func firstN(events []Event, n int) []Event {
	if len(events) > n {
		return events[:n]
	}
	return events
}
