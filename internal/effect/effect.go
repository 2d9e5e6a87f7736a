// SPDX-License-Identifier: MIT
/*
Package effect implements in-place audio effects driven one frame at a time
by a host pipeline:

- Fade: linear fade-in from the start of the track and, when the track
  length is known, linear fade-out towards its end.
- Gain: static gain from a decibel setting, with the linear multiplier
  cached until the setting changes.

Both effects read their settings from a shared PropertySet on every frame,
skip read-only frames silently, and never report errors to the host.

Real-time contract:
- ProcessFrame does not allocate or lock; gain only logs when its setting changes
- A frame's BufferView is locked and released inside a single call
- An effect instance is driven from one goroutine at a time
*/
package effect

// ClosedReason tells an effect why the host is closing it.
type ClosedReason int

const (
	ClosedReasonDone ClosedReason = iota
	ClosedReasonUnknownError
	ClosedReasonUnsupportedEncoding
	ClosedReasonEffectsChanged
)

func (r ClosedReason) String() string {
	switch r {
	case ClosedReasonDone:
		return "done"
	case ClosedReasonUnknownError:
		return "unknown error"
	case ClosedReasonUnsupportedEncoding:
		return "unsupported encoding"
	case ClosedReasonEffectsChanged:
		return "effects changed"
	default:
		return "unknown"
	}
}

// ProcessContext carries the frames for one ProcessFrame call. Effects that
// process in place leave OutputFrame untouched.
type ProcessContext struct {
	InputFrame  *Frame
	OutputFrame *Frame
}

// Effect is the capability set a host expects from an audio effect.
type Effect interface {
	// SupportedEncodingProperties lists the formats the effect accepts.
	SupportedEncodingProperties() []EncodingProperties
	// SetEncodingProperties is called once negotiation has settled on a format.
	SetEncodingProperties(EncodingProperties)
	// SetProperties hands over the shared configuration.
	SetProperties(*PropertySet)
	// ProcessFrame transforms one frame.
	ProcessFrame(*ProcessContext)
	Close(ClosedReason)
	DiscardQueuedFrames()
	// UseInputFrameForOutput reports whether the effect writes into the input frame.
	UseInputFrameForOutput() bool
}
