// SPDX-License-Identifier: MIT
package analysis

// Defines the standard interface for components that observe processed audio.
type AudioProcessor interface {
	// Process analyzes one interleaved float32 frame after the effect chain has run. Implementations
	// are called from the engine loop and must not retain the slice.
	Process(samples []float32)
}

// ClosableProcessor combines AudioProcessor with a Close method for resource cleanup.
type ClosableProcessor interface {
	AudioProcessor
	Close() error // Close releases any resources held by the processor.
}

// LevelProvider exposes the most recent level reading to pollers such as the UDP publisher.
type LevelProvider interface {
	Latest() Reading
}

// SpectrumProvider defines an interface for components that can provide FFT magnitude results.
// Consumers copy the magnitudes out with GetMagnitudesInto so that polling does not allocate.
type SpectrumProvider interface {
	GetMagnitudesInto(dest []float64) error  // GetMagnitudesInto copies the latest spectrum into dest.
	GetFrequencyForBin(binIndex int) float64 // GetFrequencyForBin returns the center frequency (Hz) for a given FFT bin index.
	GetFFTSize() int                         // GetFFTSize returns the size (number of points) of the FFT.
	GetSampleRate() float64                  // GetSampleRate returns the sample rate used for the FFT analysis.
}
