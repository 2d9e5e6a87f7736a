// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	applog "audiofx/internal/log"
	"audiofx/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the window applied before the FFT.
type WindowFunc int

const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var windowNames = [...]string{
	BartlettHann:    "BartlettHann",
	Blackman:        "Blackman",
	BlackmanNuttall: "BlackmanNuttall",
	Hann:            "Hann",
	Hamming:         "Hamming",
	Lanczos:         "Lanczos",
	Nuttall:         "Nuttall",
}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// Pre-allocated buffers for FFT calculations.
type fftWorkspace struct {
	input     []float64    // Windowed mono signal.
	fftOutput []complex128 // FFT complex results.
	magnitude []float64    // Latest magnitudes, guarded by mu.
	window    []float64    // Pre-calculated window coefficients.
	mu        sync.RWMutex
}

// SpectrumProcessor downmixes each processed frame to mono and computes its
// magnitude spectrum. Frames shorter than the FFT size are zero padded and
// longer ones are truncated.
type SpectrumProcessor struct {
	fftCalculator *fourier.FFT
	fftSize       int
	sampleRate    float64
	channels      int
	workspace     fftWorkspace
}

// Compile-time checks for interface implementations.
var _ ClosableProcessor = (*SpectrumProcessor)(nil)
var _ SpectrumProvider = (*SpectrumProcessor)(nil)

// NewSpectrumProcessor validates the FFT size (a power of two), sample rate and channel count and
// pre-allocates every buffer Process needs.
func NewSpectrumProcessor(fftSize int, sampleRate float64, channels int, windowType WindowFunc) (*SpectrumProcessor, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("channel count must be positive, got %d", channels)
	}

	windowCoeffs := make([]float64, fftSize)
	applyWindow(windowCoeffs, windowType)

	// Real input gives N/2 + 1 bins.
	bins := fftSize/2 + 1

	applog.Infof("Analysis: Initializing SpectrumProcessor (Size: %d, SampleRate: %.1f Hz, Channels: %d, Window: %s)",
		fftSize, sampleRate, channels, windowType)

	return &SpectrumProcessor{
		fftCalculator: fourier.NewFFT(fftSize),
		fftSize:       fftSize,
		sampleRate:    sampleRate,
		channels:      channels,
		workspace: fftWorkspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, bins),
			magnitude: make([]float64, bins),
			window:    windowCoeffs,
		},
	}, nil
}

// Process implements AudioProcessor.
func (p *SpectrumProcessor) Process(samples []float32) {
	ws := &p.workspace
	frames := len(samples) / p.channels
	scale := 1.0 / float64(p.channels)

	for i := range p.fftSize {
		if i >= frames {
			ws.input[i] = 0
			continue
		}
		var sum float64
		for _, s := range samples[i*p.channels : (i+1)*p.channels] {
			sum += float64(s)
		}
		ws.input[i] = sum * scale * ws.window[i]
	}

	p.fftCalculator.Coefficients(ws.fftOutput, ws.input)

	ws.mu.Lock()
	for i, c := range ws.fftOutput {
		ws.magnitude[i] = cmplx.Abs(c)
	}
	ws.mu.Unlock()
}

// GetMagnitudes returns a copy of the latest magnitudes. It allocates; pollers
// should prefer GetMagnitudesInto.
func (p *SpectrumProcessor) GetMagnitudes() []float64 {
	p.workspace.mu.RLock()
	defer p.workspace.mu.RUnlock()
	return append([]float64(nil), p.workspace.magnitude...)
}

// GetMagnitudesInto copies the latest magnitudes into dest, which must hold
// exactly fftSize/2 + 1 values.
func (p *SpectrumProcessor) GetMagnitudesInto(dest []float64) error {
	p.workspace.mu.RLock()
	defer p.workspace.mu.RUnlock()

	if len(dest) != len(p.workspace.magnitude) {
		return fmt.Errorf("destination slice length %d does not match required length %d", len(dest), len(p.workspace.magnitude))
	}
	copy(dest, p.workspace.magnitude)
	return nil
}

// GetFrequencyForBin returns the center frequency of a bin, or 0 when the
// index is out of range.
func (p *SpectrumProcessor) GetFrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(p.workspace.fftOutput) {
		return 0.0
	}
	return float64(binIndex) * (p.sampleRate / float64(p.fftSize))
}

func (p *SpectrumProcessor) GetFFTSize() int { return p.fftSize }

func (p *SpectrumProcessor) GetSampleRate() float64 { return p.sampleRate }

func (p *SpectrumProcessor) Close() error {
	applog.Debugf("Analysis: Closing SpectrumProcessor")
	return nil
}

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return Hann together with an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// The gonum window functions scale the slice in place.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		applog.Warnf("Analysis: Unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(coeffs)
	}
}
