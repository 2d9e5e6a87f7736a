// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"audiofx/pkg/utils"
)

func TestLevelProcessor(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float32
		wantPeak float64
		wantRMS  float64
	}{
		{"Silence", make([]float32, 512), SilenceDBFS, SilenceDBFS},
		{"Empty", nil, SilenceDBFS, SilenceDBFS},
		{"Half scale DC", utils.GenerateConstant(512, -0.5), -6.0206, -6.0206},
		{"Full scale sine", utils.GenerateSineWave(4800, 2, 48000, 1000, 1), 0, -3.0103},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLevelProcessor(nil, 1)
			p.Process(tt.samples)

			got := p.Latest()
			if math.Abs(float64(got.PeakDBFS)-tt.wantPeak) > 0.01 {
				t.Errorf("peak = %.4f dBFS, want %.4f", got.PeakDBFS, tt.wantPeak)
			}
			if math.Abs(float64(got.RMSDBFS)-tt.wantRMS) > 0.01 {
				t.Errorf("rms = %.4f dBFS, want %.4f", got.RMSDBFS, tt.wantRMS)
			}
			if got.Frames != 1 || got.Type != "level" {
				t.Errorf("unexpected reading metadata: %+v", got)
			}
		})
	}
}

func TestLevelProcessorSendsEveryN(t *testing.T) {
	mt := &utils.MockTransport{}
	p := NewLevelProcessor(mt, 2)

	frame := utils.GenerateConstant(64, 0.25)
	for range 5 {
		p.Process(frame)
	}

	msgs := mt.Messages()
	if len(msgs) != 2 {
		t.Fatalf("sent %d readings, want 2", len(msgs))
	}
	for i, msg := range msgs {
		r, ok := msg.(Reading)
		if !ok {
			t.Fatalf("message %d has type %T, want Reading", i, msg)
		}
		if want := uint64(2 * (i + 1)); r.Frames != want {
			t.Errorf("message %d Frames = %d, want %d", i, r.Frames, want)
		}
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if mt.Closed() {
		t.Error("LevelProcessor must not close a shared transport")
	}
}

func TestLevelProcessorHotPath(t *testing.T) {
	p := NewLevelProcessor(nil, 1)
	frame := utils.GenerateComplexWave(512, 2, 48000)

	// Warm-up sizes the scratch buffer.
	p.Process(frame)
	allocs := testing.AllocsPerRun(100, func() {
		p.Process(frame)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in LevelProcessor.Process, got %.1f", allocs)
	}
}

func TestToDBFS(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1, 0},
		{0.1, -20},
		{0, SilenceDBFS},
		{-1, SilenceDBFS},
		{1e-9, SilenceDBFS},
		{math.NaN(), SilenceDBFS},
	}
	for _, tt := range tests {
		if got := ToDBFS(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ToDBFS(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkLevelProcessor(b *testing.B) {
	p := NewLevelProcessor(nil, 1)
	frame := utils.GenerateComplexWave(512, 2, 48000)

	b.ReportAllocs()
	for b.Loop() {
		p.Process(frame)
	}
}
