// SPDX-License-Identifier: MIT
package effect

import (
	"math"

	applog "audiofx/internal/log"
)

// DecibelsToMultiplier converts a gain in dB to a linear amplitude factor,
// 10^(db/20): 0 dB -> 1.0, +20 dB -> 10.0, -20 dB -> 0.1.
func DecibelsToMultiplier(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

// Gain scales every sample by a multiplier derived from AudioGain_GainValue.
// The multiplier is only recomputed when the decibel setting changes.
type Gain struct {
	encoding   EncodingProperties
	properties *PropertySet

	lastDecibels float32
	multiplier   float32
}

var _ Effect = (*Gain)(nil)

// NewGain returns a gain effect at unity (0 dB).
func NewGain() *Gain {
	return &Gain{
		lastDecibels: 0,
		multiplier:   1,
	}
}

func (e *Gain) SupportedEncodingProperties() []EncodingProperties {
	return SupportedEncodings()
}

func (e *Gain) SetEncodingProperties(enc EncodingProperties) {
	e.encoding = enc
}

func (e *Gain) EncodingProperties() EncodingProperties {
	return e.encoding
}

func (e *Gain) SetProperties(props *PropertySet) {
	e.properties = props
}

// Multiplier returns the cached linear multiplier.
func (e *Gain) Multiplier() float32 {
	return e.multiplier
}

// Decibels returns the decibel value the cached multiplier was derived from.
func (e *Gain) Decibels() float32 {
	return e.lastDecibels
}

// update refreshes the cache when db differs from the last observed value.
func (e *Gain) update(db float32) {
	if db == e.lastDecibels {
		return
	}
	e.lastDecibels = db
	e.multiplier = DecibelsToMultiplier(db)
	applog.Debugf("GainEffect: %.2f dB -> x%.4f", db, e.multiplier)
}

// ProcessFrame scales the input frame by the cached multiplier. An absent
// gain value means 0 dB.
func (e *Gain) ProcessFrame(ctx *ProcessContext) {
	if e.properties.Has(KeyGainDisabled) {
		return
	}

	frame := ctx.InputFrame
	if frame == nil || frame.IsReadOnly() {
		return
	}

	e.update(e.properties.FloatOr(KeyGainValue, 0))

	view, err := frame.LockBuffer(AccessReadWrite)
	if err != nil {
		return
	}
	defer view.Release()

	view.Scale(e.multiplier)
}

// Close keeps the cache; a closed instance is not reused by the host.
func (e *Gain) Close(ClosedReason) {}

func (e *Gain) DiscardQueuedFrames() {}

func (e *Gain) UseInputFrameForOutput() bool {
	return true
}
