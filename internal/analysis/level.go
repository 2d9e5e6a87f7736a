// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sync"

	applog "audiofx/internal/log"
	"audiofx/internal/transport"

	"gonum.org/v1/gonum/floats"
)

// SilenceDBFS is reported for frames whose level is at or below -120 dBFS.
const SilenceDBFS = -120.0

// Reading is a single meter update. It is sent as JSON over the WebSocket
// transport and packed into UDP packets by the udp package.
type Reading struct {
	Type     string  `json:"type"`
	PeakDBFS float32 `json:"peak_dbfs"`
	RMSDBFS  float32 `json:"rms_dbfs"`
	Frames   uint64  `json:"frames"` // Frames processed so far, including this one.
}

// LevelProcessor measures peak and RMS level of every processed frame. The
// latest reading is kept for pollers, and every sendEvery frames it is also
// pushed to the transport.
type LevelProcessor struct {
	transport transport.Transport
	sendEvery uint64

	scratch []float64 // float64 copy of the frame for gonum.

	mu     sync.RWMutex
	latest Reading
}

// Compile-time checks for interface implementations.
var _ ClosableProcessor = (*LevelProcessor)(nil)
var _ LevelProvider = (*LevelProcessor)(nil)

// NewLevelProcessor creates a level meter. A nil transport disables pushing;
// sendEvery values below 1 are treated as 1.
func NewLevelProcessor(t transport.Transport, sendEvery int) *LevelProcessor {
	if sendEvery < 1 {
		sendEvery = 1
	}
	applog.Infof("Analysis: Initializing LevelProcessor (send every %d frames)", sendEvery)
	return &LevelProcessor{
		transport: t,
		sendEvery: uint64(sendEvery),
		latest:    Reading{Type: "level", PeakDBFS: SilenceDBFS, RMSDBFS: SilenceDBFS},
	}
}

// Process implements AudioProcessor.
func (p *LevelProcessor) Process(samples []float32) {
	var peak, rms float64
	if n := len(samples); n > 0 {
		if cap(p.scratch) < n {
			p.scratch = make([]float64, n)
		}
		s := p.scratch[:n]
		for i, v := range samples {
			s[i] = float64(v)
		}
		peak = floats.Norm(s, math.Inf(1))
		rms = floats.Norm(s, 2) / math.Sqrt(float64(n))
	}

	p.mu.Lock()
	p.latest.Frames++
	p.latest.PeakDBFS = float32(ToDBFS(peak))
	p.latest.RMSDBFS = float32(ToDBFS(rms))
	reading := p.latest
	p.mu.Unlock()

	if p.transport != nil && reading.Frames%p.sendEvery == 0 {
		if err := p.transport.Send(reading); err != nil {
			applog.Warnf("Analysis: Failed to send level reading: %v", err)
		}
	}
}

// Latest returns the most recent reading.
func (p *LevelProcessor) Latest() Reading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Close does not close the transport, which may be shared.
func (p *LevelProcessor) Close() error {
	applog.Debugf("Analysis: Closing LevelProcessor after %d frames", p.Latest().Frames)
	return nil
}

// ToDBFS converts a linear amplitude (1.0 = full scale) to dBFS, floored at
// SilenceDBFS.
func ToDBFS(amplitude float64) float64 {
	if amplitude <= 0 || math.IsNaN(amplitude) {
		return SilenceDBFS
	}
	return math.Max(20*math.Log10(amplitude), SilenceDBFS)
}
