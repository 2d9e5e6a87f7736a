// SPDX-License-Identifier: MIT
package effect

import "time"

// Property keys understood by the fade and gain effects.
const (
	KeyFadeDisabled  = "AudioFade_Disabled"
	KeyFadeDuration  = "AudioFade_FadeDuration"
	KeyTrackDuration = "AudioFade_TrackDuration"
	KeyGainDisabled  = "AudioGain_Disabled"
	KeyGainValue     = "AudioGain_GainValue"
)

// PropertySet is the host-supplied configuration shared by reference with
// every effect in a chain. Effects only read from it; the host mutates it
// between frames, never while a frame is being processed. A nil *PropertySet
// behaves as an empty set.
type PropertySet struct {
	values map[string]any
}

// NewPropertySet creates an empty property set.
func NewPropertySet() *PropertySet {
	return &PropertySet{values: make(map[string]any)}
}

// Set stores value under key, replacing any previous value.
func (p *PropertySet) Set(key string, value any) {
	p.values[key] = value
}

// Remove deletes key. Removing a missing key is a no-op.
func (p *PropertySet) Remove(key string) {
	delete(p.values, key)
}

// Lookup returns the raw value stored under key.
func (p *PropertySet) Lookup(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present, whatever its value. Presence alone is
// what the *_Disabled flags test for.
func (p *PropertySet) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Float returns the value under key as a float32. Integer and float64 values
// are converted; any other type is treated as absent.
func (p *PropertySet) Float(key string) (float32, bool) {
	v, ok := p.Lookup(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	default:
		return 0, false
	}
}

// FloatOr returns Float(key), or def when the key is absent or not numeric.
func (p *PropertySet) FloatOr(key string, def float32) float32 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

// Duration returns the value under key when it is a time.Duration.
func (p *PropertySet) Duration(key string) (time.Duration, bool) {
	v, ok := p.Lookup(key)
	if !ok {
		return 0, false
	}
	d, ok := v.(time.Duration)
	return d, ok
}

// Keys returns the keys currently present, in no particular order.
func (p *PropertySet) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	return keys
}
