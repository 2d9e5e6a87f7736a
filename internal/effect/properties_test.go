// SPDX-License-Identifier: MIT
package effect

import (
	"slices"
	"testing"
	"time"
)

func TestPropertySetFloat(t *testing.T) {
	tests := []struct {
		desc   string
		value  any
		want   float32
		wantOK bool
	}{
		{"float32", float32(2.5), 2.5, true},
		{"float64", 4.25, 4.25, true},
		{"int", 3, 3, true},
		{"int64", int64(-7), -7, true},
		{"string", "3.0", 0, false},
		{"nil", nil, 0, false},
		{"duration", time.Second, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			p := NewPropertySet()
			p.Set("k", tt.value)
			got, ok := p.Float("k")
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Float() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPropertySetDefaults(t *testing.T) {
	p := NewPropertySet()
	if got := p.FloatOr(KeyFadeDuration, DefaultFadeDuration); got != DefaultFadeDuration {
		t.Errorf("FloatOr on missing key = %v, want %v", got, DefaultFadeDuration)
	}

	p.Set(KeyFadeDuration, "fast")
	if got := p.FloatOr(KeyFadeDuration, 1.5); got != 1.5 {
		t.Errorf("FloatOr on non-numeric value = %v, want 1.5", got)
	}

	if _, ok := p.Duration(KeyTrackDuration); ok {
		t.Error("Duration on missing key should report absent")
	}
	p.Set(KeyTrackDuration, 95.0)
	if _, ok := p.Duration(KeyTrackDuration); ok {
		t.Error("Duration on float value should report absent")
	}
	p.Set(KeyTrackDuration, 95*time.Second)
	if d, ok := p.Duration(KeyTrackDuration); !ok || d != 95*time.Second {
		t.Errorf("Duration() = %v, %v, want 1m35s, true", d, ok)
	}
}

func TestPropertySetPresence(t *testing.T) {
	p := NewPropertySet()
	if p.Has(KeyGainDisabled) {
		t.Error("empty set reports key present")
	}

	p.Set(KeyGainDisabled, false)
	if !p.Has(KeyGainDisabled) {
		t.Error("presence flag with false value should still count as present")
	}

	p.Remove(KeyGainDisabled)
	p.Remove(KeyGainDisabled)
	if p.Has(KeyGainDisabled) {
		t.Error("key still present after Remove")
	}
}

func TestNilPropertySet(t *testing.T) {
	var p *PropertySet
	if p.Has(KeyFadeDisabled) {
		t.Error("nil set reports key present")
	}
	if got := p.FloatOr(KeyGainValue, 0); got != 0 {
		t.Errorf("nil set FloatOr = %v, want 0", got)
	}
	if keys := p.Keys(); keys != nil {
		t.Errorf("nil set Keys() = %v, want nil", keys)
	}
}

func TestPropertySetKeys(t *testing.T) {
	p := NewPropertySet()
	p.Set(KeyGainValue, 1.0)
	p.Set(KeyFadeDuration, 2.0)

	keys := p.Keys()
	slices.Sort(keys)
	want := []string{KeyFadeDuration, KeyGainValue}
	if !slices.Equal(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}
