// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"

	"audiofx/internal/analysis"
	applog "audiofx/internal/log"
)

// DefaultInterval is used when a non-positive interval is supplied.
const DefaultInterval = 16 * time.Millisecond

// HeaderSize is the size of the fixed part of a packet.
const HeaderSize = 4 + 8 + 4 + 4 + 8 + 2

/*
Packet layout (BigEndian):

+------------------------------------------------------------------------------+
| Field            | Data Type | Size (Bytes) | Description                    |
|------------------|-----------|--------------|--------------------------------|
| Sequence Number  | uint32    | 4            | Monotonically increasing       |
| Timestamp        | int64     | 8            | Nanoseconds since epoch        |
| Peak             | float32   | 4            | dBFS                           |
| RMS              | float32   | 4            | dBFS                           |
| Frames           | uint64    | 8            | Frames processed so far        |
| Magnitude Count  | uint16    | 2            | N, zero without a spectrum     |
| Magnitudes       | []float32 | N * 4        | FFT magnitudes                 |
+------------------------------------------------------------------------------+
*/

// Packet is the decoded form of one datagram.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	PeakDBFS   float32
	RMSDBFS    float32
	Frames     uint64
	Magnitudes []float32
}

var errShortPacket = errors.New("udp: packet too short")

// Publisher polls the latest level reading (and optionally a spectrum) on an
// interval and sends it through a Sender.
type Publisher struct {
	sender   *Sender
	levels   analysis.LevelProvider
	spectrum analysis.SpectrumProvider // May be nil.
	interval time.Duration

	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.
	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup

	sequenceNum uint32

	// Reused on every tick.
	magBuffer    []float64
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a publisher. spectrum may be nil, in which case the
// magnitude count is always zero.
func NewPublisher(interval time.Duration, sender *Sender, levels analysis.LevelProvider, spectrum analysis.SpectrumProvider) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if levels == nil {
		return nil, errors.New("UDPPublisher: level provider cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	p := &Publisher{
		sender:       sender,
		levels:       levels,
		spectrum:     spectrum,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}
	bins := 0
	if spectrum != nil {
		bins = spectrum.GetFFTSize()/2 + 1
		p.magBuffer = make([]float64, bins)
	}
	p.packetBuffer.Grow(HeaderSize + 4*bins)

	applog.Infof("UDPPublisher: Initializing (Interval: %s, FFT Bins: %d)", interval, bins)
	return p, nil
}

// Start launches the publishing goroutine. Calling Start while running is a
// no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})

	ticker, doneChan := p.ticker, p.doneChan
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Calling Stop when not
// running is a no-op.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	close(p.doneChan)
	p.ticker.Stop()
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("UDPPublisher: Stopped after %d packets", p.sequenceNum)
	return nil
}

func (p *Publisher) buildAndSendPacket() {
	reading := p.levels.Latest()

	var mags []float64
	if p.spectrum != nil {
		if err := p.spectrum.GetMagnitudesInto(p.magBuffer); err != nil {
			applog.Errorf("UDPPublisher: Error getting magnitudes: %v", err)
			return
		}
		mags = p.magBuffer
	}

	p.sequenceNum++
	p.packetBuffer.Reset()
	appendPacket(p.packetBuffer, p.sequenceNum, time.Now().UnixNano(), reading, mags)

	if err := p.sender.Send(p.packetBuffer.Bytes()); err == nil {
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, p.packetBuffer.Len())
	}
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*Publisher)(nil)

func appendPacket(buf *bytes.Buffer, seq uint32, timestamp int64, r analysis.Reading, mags []float64) {
	var scratch [8]byte
	be := binary.BigEndian

	be.PutUint32(scratch[:4], seq)
	buf.Write(scratch[:4])
	be.PutUint64(scratch[:], uint64(timestamp))
	buf.Write(scratch[:])
	be.PutUint32(scratch[:4], math.Float32bits(r.PeakDBFS))
	buf.Write(scratch[:4])
	be.PutUint32(scratch[:4], math.Float32bits(r.RMSDBFS))
	buf.Write(scratch[:4])
	be.PutUint64(scratch[:], r.Frames)
	buf.Write(scratch[:])

	n := min(len(mags), math.MaxUint16)
	be.PutUint16(scratch[:2], uint16(n))
	buf.Write(scratch[:2])
	for _, m := range mags[:n] {
		be.PutUint32(scratch[:4], math.Float32bits(float32(m)))
		buf.Write(scratch[:4])
	}
}

// DecodePacket parses a datagram produced by Publisher.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, errShortPacket
	}
	be := binary.BigEndian
	pkt := Packet{
		Sequence:  be.Uint32(data[0:4]),
		Timestamp: int64(be.Uint64(data[4:12])),
		PeakDBFS:  math.Float32frombits(be.Uint32(data[12:16])),
		RMSDBFS:   math.Float32frombits(be.Uint32(data[16:20])),
		Frames:    be.Uint64(data[20:28]),
	}
	n := int(be.Uint16(data[28:30]))
	body := data[HeaderSize:]
	if len(body) < 4*n {
		return Packet{}, errShortPacket
	}
	if n > 0 {
		pkt.Magnitudes = make([]float32, n)
		for i := range n {
			pkt.Magnitudes[i] = math.Float32frombits(be.Uint32(body[4*i:]))
		}
	}
	return pkt, nil
}
