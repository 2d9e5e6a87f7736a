package audio

import (
	"fmt"

	applog "audiofx/internal/log"

	"github.com/gordonklaus/portaudio"
)

// StartOutputStream opens a blocking output stream on the configured device
// with the negotiated rate and channel count. Run writes every processed
// frame to it.
func (e *Engine) StartOutputStream() error {
	if !e.configured {
		return ErrNotConfigured
	}
	if e.outputStream != nil {
		return nil
	}

	device, err := OutputDevice(e.config.Audio.OutputDevice)
	if err != nil {
		return err
	}
	e.outputDevice = device

	if e.config.Audio.LowLatency {
		e.outputLatency = device.DefaultLowOutputLatency
	} else {
		e.outputLatency = device.DefaultHighOutputLatency
	}

	format := e.frame.Format()
	if format.NumChannels > device.MaxOutputChannels {
		return fmt.Errorf("device %s supports %d output channels, stream needs %d",
			device.Name, device.MaxOutputChannels, format.NumChannels)
	}

	e.outputBuffer = make([]float32, e.config.Audio.FramesPerBuffer*format.NumChannels)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // No input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: format.NumChannels,
			Device:   device,
			Latency:  e.outputLatency,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      float64(format.SampleRate),
	}

	stream, err := portaudio.OpenStream(params, e.outputBuffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	e.outputStream = stream

	applog.Infof("Engine: Playing on %s (%d Hz, %d ch, latency %s)",
		device.Name, format.SampleRate, format.NumChannels, e.outputLatency)
	return nil
}

// writeOutput blocks until the device accepts the frame. A short final frame
// is padded with silence.
func (e *Engine) writeOutput(samples []float32) {
	n := copy(e.outputBuffer, samples)
	clear(e.outputBuffer[n:])

	if err := e.outputStream.Write(); err != nil {
		if err == portaudio.OutputUnderflowed {
			applog.Warnf("Engine: Output underflow")
			return
		}
		applog.Errorf("Engine: Error writing to output stream: %v", err)
	}
}

// StopOutputStream stops and closes the output stream if one is open.
func (e *Engine) StopOutputStream() error {
	if e.outputStream == nil {
		return nil
	}

	if err := e.outputStream.Stop(); err != nil {
		return err
	}
	if err := e.outputStream.Close(); err != nil {
		return err
	}
	e.outputStream = nil
	return nil
}
