// Package utils holds signal generators and fakes shared by tests.
package utils

import (
	"math"
	"sync"
)

// MockTransport records everything sent to it instead of transmitting.
type MockTransport struct {
	SendErr error // Returned by Send when non-nil.

	mu       sync.Mutex
	messages []any
	closed   bool
}

// Send stores data for later inspection.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.messages...)
}

func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateComplexWave returns frames of a 440Hz tone plus two harmonics,
// interleaved across channels and peaking at 0.9.
func GenerateComplexWave(frames, channels int, sampleRate float64) []float32 {
	buffer := make([]float32, frames*channels)
	for i := range frames {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		for c := range channels {
			buffer[i*channels+c] = float32(signal * 0.9)
		}
	}
	return buffer
}

// GenerateSineWave returns frames of a sine wave with the given amplitude,
// identical on every channel.
func GenerateSineWave(frames, channels int, sampleRate, frequency float64, amplitude float32) []float32 {
	buffer := make([]float32, frames*channels)
	for i := range frames {
		s := amplitude * float32(math.Sin(2*math.Pi*frequency*float64(i)/sampleRate))
		for c := range channels {
			buffer[i*channels+c] = s
		}
	}
	return buffer
}

// GenerateConstant returns n samples all set to value.
func GenerateConstant(n int, value float32) []float32 {
	buffer := make([]float32, n)
	for i := range buffer {
		buffer[i] = value
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude within
// [startBin, endBin], clamping the range to the slice.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
