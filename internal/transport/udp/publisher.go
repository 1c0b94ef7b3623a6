// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"earshot/internal/analysis"
)

// PacketSender is the part of UDPSender the publisher needs.
type PacketSender interface {
	Send(data []byte) error
}

// TimelineSource is implemented by payloads that carry frame-aligned
// timelines.
type TimelineSource interface {
	Timelines() []analysis.Timeline
}

// TimelinePublisher replays the timelines of an analysis one frame per tick,
// so a visualizer can follow along with playback. Each packet carries the
// values of every timeline at one frame.
type TimelinePublisher struct {
	sender   PacketSender
	interval time.Duration
	loop     bool

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects everything below and ticker/doneChan.

	names    []string
	times    []float64
	rows     [][]float32 // rows[frame][timeline]
	cursor   int
	finished chan struct{}

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewTimelinePublisher creates a publisher sending through sender. If the
// interval is invalid (<= 0), it defaults to 33ms (~30Hz). When loop is set
// the replay restarts after the last frame; otherwise Finished is closed.
func NewTimelinePublisher(interval time.Duration, sender PacketSender, loop bool) (*TimelinePublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("TimelinePublisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		logger.Warnf("invalid publish interval, defaulting to %s", interval)
	}

	return &TimelinePublisher{
		sender:       sender,
		interval:     interval,
		loop:         loop,
		finished:     make(chan struct{}),
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Load replaces the timelines being replayed and rewinds to the first
// frame. Timelines are truncated to the shortest one.
func (p *TimelinePublisher) Load(timelines []analysis.Timeline) {
	frames := math.MaxInt
	for _, t := range timelines {
		frames = min(frames, t.Len())
	}
	if len(timelines) == 0 {
		frames = 0
	}

	names := make([]string, len(timelines))
	rows := make([][]float32, frames)
	for f := range rows {
		rows[f] = make([]float32, len(timelines))
	}
	for i, t := range timelines {
		names[i] = t.Name
		for f := range frames {
			rows[f][i] = float32(t.Values[f])
		}
	}
	var times []float64
	if frames > 0 {
		times = timelines[0].Times[:frames]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.names, p.times, p.rows, p.cursor = names, times, rows, 0
	select {
	case <-p.finished:
		p.finished = make(chan struct{})
	default:
	}
	if frames == 0 && !p.loop {
		close(p.finished)
	}
	logger.Infof("loaded %d timelines of %d frames", len(timelines), frames)
}

// Send loads the timelines of a TimelineSource, or a []analysis.Timeline.
func (p *TimelinePublisher) Send(data any) error {
	switch v := data.(type) {
	case TimelineSource:
		p.Load(v.Timelines())
	case []analysis.Timeline:
		p.Load(v)
	default:
		return fmt.Errorf("TimelinePublisher: cannot publish %T", data)
	}
	return nil
}

// Names returns the timeline names in packet order.
func (p *TimelinePublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.names...)
}

// Finished is closed when a non-looping replay has sent its last frame.
func (p *TimelinePublisher) Finished() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

// Start begins the periodic publishing process.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *TimelinePublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		logger.Warnf("Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Capture local variables for the goroutine to avoid data races on p.ticker/p.doneChan
	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		logger.Debugf("publisher started (interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishFrame()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *TimelinePublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	p.mu.Lock()
	sent := p.sequenceNum
	p.mu.Unlock()
	logger.Debugf("publisher stopped after %d packets", sent)
	return nil
}

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Frame Index       | uint32         | 4            | Frame within the clip   |
| Frame Time        | float32        | 4            | Seconds from clip start |
| Value Count       | uint16         | 2            | Number of floats (N)    |
| Values            | []float32      | N * 4        | One value per timeline  |
+-----------------------------------------------------------------------------+
*/

// HeaderSize is the byte length of the fixed packet header.
const HeaderSize = 4 + 4 + 4 + 2

// Packet is a decoded timeline packet.
type Packet struct {
	Sequence uint32
	Frame    uint32
	Time     float32
	Values   []float32
}

// DecodePacket parses a packet produced by TimelinePublisher.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes", len(b))
	}
	var p Packet
	p.Sequence = binary.BigEndian.Uint32(b[0:])
	p.Frame = binary.BigEndian.Uint32(b[4:])
	p.Time = math.Float32frombits(binary.BigEndian.Uint32(b[8:]))
	n := int(binary.BigEndian.Uint16(b[12:]))
	if len(b) != HeaderSize+4*n {
		return Packet{}, fmt.Errorf("packet length %d does not match %d values", len(b), n)
	}
	p.Values = make([]float32, n)
	for i := range p.Values {
		p.Values[i] = math.Float32frombits(binary.BigEndian.Uint32(b[HeaderSize+4*i:]))
	}
	return p, nil
}

// publishFrame packs and sends the frame under the cursor, then advances it.
func (p *TimelinePublisher) publishFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor >= len(p.rows) {
		return
	}
	frame := p.cursor
	values := p.rows[frame]

	p.sequenceNum++
	p.packetBuffer.Reset()
	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint32(frame))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, float32(p.times[frame]))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(values)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, values)
	}
	if err != nil {
		logger.Errorf("error packing frame %d: %v", frame, err)
		return
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err == nil {
		logger.Debugf("sent packet %d (frame %d, %d bytes)", p.sequenceNum, frame, p.packetBuffer.Len())
	}

	p.cursor++
	if p.cursor == len(p.rows) {
		if p.loop {
			p.cursor = 0
		} else {
			close(p.finished)
		}
	}
}

// Close implements the io.Closer interface. It gracefully stops the publisher goroutine.
func (p *TimelinePublisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*TimelinePublisher)(nil)
