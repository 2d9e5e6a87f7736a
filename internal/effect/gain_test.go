// SPDX-License-Identifier: MIT
package effect

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"testing"

	applog "audiofx/internal/log"
)

func TestDecibelsToMultiplier(t *testing.T) {
	tests := []struct {
		db   float32
		want float64
	}{
		{0, 1.0},
		{20, 10.0},
		{-20, 0.1},
		{6, 1.9952623},
		{-6, 0.5011872},
		{40, 100.0},
	}

	for _, tt := range tests {
		t.Run(formatDecibels(tt.db), func(t *testing.T) {
			got := float64(DecibelsToMultiplier(tt.db))
			if absFloat(got-tt.want)/tt.want > 1e-6 {
				t.Errorf("DecibelsToMultiplier(%v) = %v, want %v", tt.db, got, tt.want)
			}
		})
	}
}

func TestGainStartsAtUnity(t *testing.T) {
	gain := NewGain()
	if gain.Multiplier() != 1 || gain.Decibels() != 0 {
		t.Errorf("new gain = %v dB x%v, want 0 dB x1", gain.Decibels(), gain.Multiplier())
	}

	frame := newTestFrame(0.25, -0.75)
	gain.ProcessFrame(&ProcessContext{InputFrame: frame})
	if got := frame.Buffer().Data; got[0] != 0.25 || got[1] != -0.75 {
		t.Errorf("unity gain changed samples: %v", got)
	}
}

func TestGainProcessFrame(t *testing.T) {
	props := NewPropertySet()
	props.Set(KeyGainValue, float32(6.0))

	gain := NewGain()
	gain.SetProperties(props)

	frame := newTestFrame(0.1)
	gain.ProcessFrame(&ProcessContext{InputFrame: frame, OutputFrame: frame})

	if got := frame.Buffer().Data[0]; absFloat(float64(got)-0.1995262) > 1e-5 {
		t.Errorf("0.1 at +6 dB = %v, want ~0.1995", got)
	}
	if absFloat(float64(gain.Multiplier())-1.9952623) > 1e-6 {
		t.Errorf("Multiplier() = %v, want ~1.995", gain.Multiplier())
	}
}

func TestGainScalesEverySample(t *testing.T) {
	in := []float32{0.5, -0.5, 0.0, 0.125, -1.0, 0.9}
	props := NewPropertySet()
	props.Set(KeyGainValue, -20.0)

	gain := NewGain()
	gain.SetProperties(props)

	frame := newTestFrame(in...)
	gain.ProcessFrame(&ProcessContext{InputFrame: frame})

	m := gain.Multiplier()
	for i, s := range frame.Buffer().Data {
		if s != in[i]*m {
			t.Errorf("sample %d = %v, want %v", i, s, in[i]*m)
		}
	}
}

func TestGainCacheIsStable(t *testing.T) {
	props := NewPropertySet()
	props.Set(KeyGainValue, float32(-3.5))

	gain := NewGain()
	gain.SetProperties(props)

	gain.ProcessFrame(&ProcessContext{InputFrame: newTestFrame(1)})
	first := gain.Multiplier()

	for range 1000 {
		gain.ProcessFrame(&ProcessContext{InputFrame: newTestFrame(1)})
		if math.Float32bits(gain.Multiplier()) != math.Float32bits(first) {
			t.Fatalf("multiplier drifted: %v -> %v", first, gain.Multiplier())
		}
	}
}

func TestGainRecomputesOnlyOnChange(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	applog.SetLevel(applog.LevelDebug)
	t.Cleanup(func() {
		applog.SetOutput(os.Stderr)
		applog.SetLevel(applog.LevelInfo)
	})

	props := NewPropertySet()
	gain := NewGain()
	gain.SetProperties(props)

	steps := []struct {
		value   any
		present bool
		wantDB  float32
	}{
		{nil, false, 0},
		{float32(12), true, 12},
		{float32(12), true, 12},
		{float32(-6), true, -6},
		{nil, false, 0},
		{nil, false, 0},
	}

	for _, step := range steps {
		if step.present {
			props.Set(KeyGainValue, step.value)
		} else {
			props.Remove(KeyGainValue)
		}
		gain.ProcessFrame(&ProcessContext{InputFrame: newTestFrame(1)})
		if gain.Decibels() != step.wantDB {
			t.Errorf("Decibels() = %v, want %v", gain.Decibels(), step.wantDB)
		}
		if gain.Multiplier() != DecibelsToMultiplier(step.wantDB) {
			t.Errorf("Multiplier() = %v, want %v", gain.Multiplier(), DecibelsToMultiplier(step.wantDB))
		}
	}

	// 0 -> 12 -> -6 -> 0 is three recomputations.
	if n := strings.Count(buf.String(), "GainEffect:"); n != 3 {
		t.Errorf("multiplier recomputed %d times, want 3\n%s", n, buf.String())
	}
}

func TestGainSkips(t *testing.T) {
	in := []float32{0.8, -0.2, 0.33}

	tests := []struct {
		desc  string
		setup func(*PropertySet, *Frame)
	}{
		{"Disabled", func(p *PropertySet, f *Frame) {
			p.Set(KeyGainDisabled, struct{}{})
		}},
		{"Read-only frame", func(p *PropertySet, f *Frame) {
			f.SetReadOnly(true)
		}},
		{"Buffer already locked", func(p *PropertySet, f *Frame) {
			_, _ = f.LockBuffer(AccessRead)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			props := NewPropertySet()
			props.Set(KeyGainValue, float32(12))
			frame := newTestFrame(in...)
			tt.setup(props, frame)

			gain := NewGain()
			gain.SetProperties(props)
			gain.ProcessFrame(&ProcessContext{InputFrame: frame})

			for i, s := range frame.Buffer().Data {
				if math.Float32bits(s) != math.Float32bits(in[i]) {
					t.Errorf("sample %d = %v, want bit-identical %v", i, s, in[i])
				}
			}
		})
	}
}

func TestGainIgnoresFramePosition(t *testing.T) {
	props := NewPropertySet()
	props.Set(KeyGainValue, float32(20))
	gain := NewGain()
	gain.SetProperties(props)

	frame := newTestFrame(0.01)
	gain.ProcessFrame(&ProcessContext{InputFrame: frame})

	if got := frame.Buffer().Data[0]; absFloat(float64(got)-0.1) > 1e-6 {
		t.Errorf("frame without position: sample = %v, want 0.1", got)
	}
}

func TestFadeThenGainChain(t *testing.T) {
	props := NewPropertySet()
	props.Set(KeyFadeDuration, float32(3))
	props.Set(KeyGainValue, float32(20))

	chain := []Effect{NewFade(), NewGain()}
	for _, fx := range chain {
		fx.SetProperties(props)
	}

	frame := newTestFrame(0.02, -0.02)
	frame.SetRelativeTime(seconds(1.5))
	ctx := &ProcessContext{InputFrame: frame, OutputFrame: frame}
	for _, fx := range chain {
		fx.ProcessFrame(ctx)
	}

	got := frame.Buffer().Data
	if absFloat(float64(got[0])-0.1) > 1e-6 || absFloat(float64(got[1])+0.1) > 1e-6 {
		t.Errorf("fade(0.5) then +20 dB: samples = %v, want [0.1 -0.1]", got)
	}
}

func TestGainNoAllocsHotPath(t *testing.T) {
	props := NewPropertySet()
	props.Set(KeyGainValue, float32(-6))

	gain := NewGain()
	gain.SetProperties(props)

	frame := newTestFrame(make([]float32, 1024)...)
	ctx := &ProcessContext{InputFrame: frame}
	gain.ProcessFrame(ctx)

	allocs := testing.AllocsPerRun(100, func() {
		gain.ProcessFrame(ctx)
	})
	if allocs > 0 {
		t.Errorf("Gain.ProcessFrame allocated: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkDecibelsToMultiplier(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = DecibelsToMultiplier(-6)
	}
}

func BenchmarkGainProcessFrameHotPath(b *testing.B) {
	props := NewPropertySet()
	props.Set(KeyGainValue, float32(-6))
	gain := NewGain()
	gain.SetProperties(props)

	frame := newTestFrame(make([]float32, 1024)...)
	ctx := &ProcessContext{InputFrame: frame}

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		gain.ProcessFrame(ctx)
	}
}

func formatDecibels(db float32) string {
	return fmt.Sprintf("%+gdB", db)
}
