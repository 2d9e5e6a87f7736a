// SPDX-License-Identifier: MIT
package effect

import "math"

const (
	// DefaultFadeDuration is the ramp length in seconds when
	// AudioFade_FadeDuration is not set.
	DefaultFadeDuration = 3.0

	// MinFadeDuration is the floor applied to zero, negative or NaN fade
	// durations so the ramp never divides by zero.
	MinFadeDuration = 0.001
)

// FadeAmount returns the multiplier for a frame at position seconds.
//
//	position < fade            -> position / fade          (fade-in, 0 -> 1)
//	track known                -> min(1, (track-position) / fade)  (fade-out, 1 -> 0)
//	otherwise                  -> 1
//
// The fade-out branch is only clamped from above: past the end of the track
// the result goes negative.
func FadeAmount(position, fade, track float64, trackKnown bool) float64 {
	if math.IsNaN(fade) || fade < MinFadeDuration {
		fade = MinFadeDuration
	}

	if position < fade {
		return position / fade
	}
	if trackKnown {
		return math.Min(1, (track-position)/fade)
	}
	return 1
}

// Fade ramps the volume up at the start of a track and down towards its end.
type Fade struct {
	encoding   EncodingProperties
	properties *PropertySet
}

var _ Effect = (*Fade)(nil)

func NewFade() *Fade {
	return &Fade{}
}

func (e *Fade) SupportedEncodingProperties() []EncodingProperties {
	return SupportedEncodings()
}

func (e *Fade) SetEncodingProperties(enc EncodingProperties) {
	e.encoding = enc
}

func (e *Fade) EncodingProperties() EncodingProperties {
	return e.encoding
}

func (e *Fade) SetProperties(props *PropertySet) {
	e.properties = props
}

// ProcessFrame scales the input frame by the fade amount for its position.
// Disabled effects, read-only frames and frames without a position are left
// untouched.
func (e *Fade) ProcessFrame(ctx *ProcessContext) {
	if e.properties.Has(KeyFadeDisabled) {
		return
	}

	frame := ctx.InputFrame
	if frame == nil || frame.IsReadOnly() {
		return
	}

	position, ok := frame.RelativeTime()
	if !ok {
		return
	}

	fade := e.properties.FloatOr(KeyFadeDuration, DefaultFadeDuration)
	track, trackKnown := e.properties.Duration(KeyTrackDuration)
	amount := FadeAmount(position.Seconds(), float64(fade), track.Seconds(), trackKnown)

	view, err := frame.LockBuffer(AccessReadWrite)
	if err != nil {
		return
	}
	defer view.Release()

	view.Scale(float32(amount))
}

// Close is a no-op; the fade holds nothing beyond its configuration.
func (e *Fade) Close(ClosedReason) {}

func (e *Fade) DiscardQueuedFrames() {}

func (e *Fade) UseInputFrameForOutput() bool {
	return true
}
