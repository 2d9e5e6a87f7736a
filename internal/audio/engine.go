// SPDX-License-Identifier: MIT
/*
Package audio hosts the effect chain:
- Negotiates the float PCM encoding with every effect before streaming
- Delivers positioned frames from a FrameSource through the chain in place
- Feeds analysis processors with the processed samples
- Plays through a blocking PortAudio output stream and records to WAV

Thread Safety:
- Configure, SetEffects and Properties mutations happen between frames only
- Run owns the frame and locks its OS thread while streaming
- The recording flag is atomic so Stop/Start can be called from other goroutines
*/
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"audiofx/internal/analysis"
	"audiofx/internal/config"
	"audiofx/internal/effect"
	applog "audiofx/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

type Engine struct {
	config *config.Config

	// Effect chain and the property set it shares.
	effects    []effect.Effect
	properties *effect.PropertySet
	processors []analysis.AudioProcessor

	// Negotiated stream state.
	configured bool
	encoding   effect.EncodingProperties
	frame      *effect.Frame
	processCtx effect.ProcessContext

	// Playback.
	outputDevice  *portaudio.DeviceInfo
	outputLatency time.Duration
	outputStream  *portaudio.Stream
	outputBuffer  []float32

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
	sampleScale float64
}

// NewEngine creates an engine running effects in order. The shared property
// set starts from the configuration.
func NewEngine(cfg *config.Config, effects ...effect.Effect) *Engine {
	return &Engine{
		config:     cfg,
		effects:    effects,
		properties: cfg.EffectProperties(),
	}
}

// Properties returns the property set shared by the effects. Changes must be
// made between frames and take effect on the next one.
func (e *Engine) Properties() *effect.PropertySet {
	return e.properties
}

// Effects returns the current chain.
func (e *Engine) Effects() []effect.Effect {
	return e.effects
}

// AddProcessor registers an analysis processor that sees every frame after
// the effect chain.
func (e *Engine) AddProcessor(p analysis.AudioProcessor) {
	e.processors = append(e.processors, p)
}

// Encoding returns the negotiated encoding; it is the zero value until
// Configure succeeds.
func (e *Engine) Encoding() effect.EncodingProperties {
	return e.encoding
}

// SetEffects replaces the chain. The previous effects are closed with
// ClosedReasonEffectsChanged, and the new chain is negotiated against the
// current format when one is configured.
func (e *Engine) SetEffects(effects ...effect.Effect) error {
	for _, fx := range e.effects {
		fx.Close(effect.ClosedReasonEffectsChanged)
	}
	e.effects = effects
	if !e.configured {
		return nil
	}
	if err := e.negotiate(e.encoding); err != nil {
		e.configured = false
		return err
	}
	return nil
}

// Configure negotiates format with every effect and prepares the reusable
// frame. trackDuration is the source length, 0 when unknown; a track
// duration from the configuration takes precedence.
func (e *Engine) Configure(format *audio.Format, trackDuration time.Duration) error {
	if format == nil {
		return fmt.Errorf("%w: no format", effect.ErrUnsupportedEncoding)
	}
	enc := effect.EncodingFor(format)

	switch {
	case e.config.Effects.Fade.TrackDuration > 0:
		e.properties.Set(effect.KeyTrackDuration, e.config.Effects.Fade.TrackDuration)
	case trackDuration > 0:
		e.properties.Set(effect.KeyTrackDuration, trackDuration)
	default:
		e.properties.Remove(effect.KeyTrackDuration)
	}

	if err := e.negotiate(enc); err != nil {
		e.configured = false
		return err
	}

	samples := e.config.Audio.FramesPerBuffer * format.NumChannels
	e.frame = effect.NewFrame(&audio.Float32Buffer{
		Format:         format,
		Data:           make([]float32, samples),
		SourceBitDepth: 32,
	})
	e.encoding = enc
	e.configured = true

	applog.Infof("Engine: Configured %s with %d effects", enc, len(e.effects))
	return nil
}

func (e *Engine) negotiate(enc effect.EncodingProperties) error {
	for _, fx := range e.effects {
		if !fx.UseInputFrameForOutput() {
			return fmt.Errorf("%w: %T", ErrNotInPlace, fx)
		}
		if !effect.IsSupported(fx.SupportedEncodingProperties(), enc) {
			return fmt.Errorf("%w: %T does not accept %s", effect.ErrUnsupportedEncoding, fx, enc)
		}
	}
	for _, fx := range e.effects {
		fx.SetEncodingProperties(enc)
		fx.SetProperties(e.properties)
	}
	return nil
}

// ProcessFrame runs the chain on frame in place and then hands the samples
// to every analysis processor.
// Performance Critical (Hot Path):
// - No allocations
// - The same ProcessContext is reused for every frame
func (e *Engine) ProcessFrame(frame *effect.Frame) {
	e.processCtx.InputFrame = frame
	e.processCtx.OutputFrame = frame
	for _, fx := range e.effects {
		fx.ProcessFrame(&e.processCtx)
	}

	samples := frame.Buffer().Data
	for _, p := range e.processors {
		p.Process(samples)
	}
}

// Run streams src through the engine until it is exhausted or ctx is done.
// It returns nil at end of input and ctx.Err() on cancellation.
func (e *Engine) Run(ctx context.Context, src FrameSource) error {
	if !e.configured {
		return ErrNotConfigured
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var frames int64
	for {
		select {
		case <-ctx.Done():
			applog.Infof("Engine: Stopped after %d frames: %v", frames, ctx.Err())
			return ctx.Err()
		default:
		}

		err := src.ReadFrame(e.frame)
		if errors.Is(err, io.EOF) {
			applog.Infof("Engine: End of input after %d frames", frames)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}

		e.ProcessFrame(e.frame)
		frames++

		if e.outputStream != nil {
			e.writeOutput(e.frame.Buffer().Data)
		}
		if atomic.LoadInt32(&e.isRecording) == 1 {
			e.writeRecording(e.frame.Buffer().Data)
		}
	}
}

// Discard tells every effect to drop queued frames, e.g. after a seek.
func (e *Engine) Discard() {
	for _, fx := range e.effects {
		fx.DiscardQueuedFrames()
	}
}

// Close closes every effect and processor, stops recording and stops the
// output stream. Errors from each step are joined.
func (e *Engine) Close() error {
	for _, fx := range e.effects {
		fx.Close(effect.ClosedReasonDone)
	}

	var errs []error
	for _, p := range e.processors {
		if c, ok := p.(analysis.ClosableProcessor); ok {
			errs = append(errs, c.Close())
		}
	}
	errs = append(errs, e.StopRecording(), e.StopOutputStream())
	return errors.Join(errs...)
}
