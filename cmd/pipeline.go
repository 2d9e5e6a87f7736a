package cmd

import (
	"context"
	"errors"
	"fmt"

	"audiofx/internal/analysis"
	"audiofx/internal/audio"
	"audiofx/internal/config"
	"audiofx/internal/effect"
	applog "audiofx/internal/log"
	"audiofx/internal/transport"
	"audiofx/internal/transport/udp"
	"audiofx/internal/tui"

	goaudio "github.com/go-audio/audio"
)

// runPipeline streams cfg.InputFile through the fade and gain effects.
// render writes the result to cfg.OutputFile; play writes it to the output
// device and records it too when cfg.OutputFile is set.
func runPipeline(ctx context.Context, cfg *config.Config) (err error) {
	if cfg.Command == "play" {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
	}

	src, err := audio.OpenFile(cfg.InputFile, cfg.Audio.FramesPerBuffer)
	if err != nil {
		return err
	}
	defer src.Close()

	format := src.Format()
	applog.Infof("CLI: %s: %d Hz, %d channels, %s",
		cfg.InputFile, format.SampleRate, format.NumChannels, src.Duration())

	engine := audio.NewEngine(cfg, effect.NewFade(), effect.NewGain())
	defer func() {
		err = errors.Join(err, engine.Close())
	}()

	if err := engine.Configure(format, src.Duration()); err != nil {
		return err
	}

	m, err := startMeters(cfg, engine, format)
	if err != nil {
		return err
	}
	defer m.Close()

	if cfg.Command == "play" {
		if cfg.PickDevice {
			if err := pickOutputDevice(cfg); err != nil {
				return err
			}
		}
		if err := engine.StartOutputStream(); err != nil {
			return err
		}
	}

	if cfg.OutputFile != "" {
		if err := engine.StartRecording(cfg.OutputFile); err != nil {
			return err
		}
	}

	err = engine.Run(ctx, src)
	if errors.Is(err, context.Canceled) {
		applog.Infof("CLI: Interrupted")
		err = nil
	}

	if cfg.OutputFile != "" {
		if stopErr := engine.StopRecording(); stopErr != nil {
			return errors.Join(err, stopErr)
		}
		fmt.Printf("\nAudio saved to: %s\n", cfg.OutputFile)
	}
	return err
}

// pickOutputDevice replaces the configured output device with the one chosen
// in the picker. Quitting the picker keeps the configured device.
func pickOutputDevice(cfg *config.Config) error {
	devices, err := audio.OutputDevices()
	if err != nil {
		return err
	}
	id, err := tui.PickDevice(devices)
	if errors.Is(err, tui.ErrNoSelection) {
		applog.Infof("CLI: No device picked, using device %d", cfg.Audio.OutputDevice)
		return nil
	}
	if err != nil {
		return fmt.Errorf("device picker: %w", err)
	}
	cfg.Audio.OutputDevice = id
	return nil
}

// meters owns the analysis outputs attached to an engine run.
type meters struct {
	transport transport.Transport
	sender    *udp.Sender
	publisher *udp.Publisher
}

// startMeters attaches a level meter, and a spectrum when enabled, to engine
// and starts whichever publishers cfg asks for. Level readings go to the
// WebSocket transport when enabled, else to the debug log when debug
// logging is on.
func startMeters(cfg *config.Config, engine *audio.Engine, format *goaudio.Format) (m *meters, err error) {
	m = &meters{}
	defer func() {
		if err != nil {
			m.Close()
		}
	}()

	tc := cfg.Transport
	switch {
	case tc.WebSocketEnabled:
		ws, err := transport.NewWebSocketTransport(tc.WebSocketAddress)
		if err != nil {
			return m, err
		}
		m.transport = ws
	case applog.Enabled(applog.LevelDebug):
		m.transport = transport.NewLoggingTransport()
	}

	levels := analysis.NewLevelProcessor(m.transport, tc.MeterEveryFrames)
	engine.AddProcessor(levels)

	var spectrum analysis.SpectrumProvider
	if cfg.Analysis.SpectrumEnabled {
		window, err := analysis.ParseWindowFunc(cfg.Analysis.FFTWindow)
		if err != nil {
			return m, err
		}
		sp, err := analysis.NewSpectrumProcessor(cfg.Analysis.FFTSize,
			float64(format.SampleRate), format.NumChannels, window)
		if err != nil {
			return m, err
		}
		engine.AddProcessor(sp)
		spectrum = sp
	}

	if tc.UDPEnabled {
		m.sender, err = udp.NewSender(tc.UDPTargetAddress)
		if err != nil {
			return m, err
		}
		m.publisher, err = udp.NewPublisher(tc.UDPSendInterval, m.sender, levels, spectrum)
		if err != nil {
			return m, err
		}
		m.publisher.Start()
	}

	return m, nil
}

// Close stops the publishers and closes their connections.
func (m *meters) Close() error {
	var errs []error
	if m.publisher != nil {
		errs = append(errs, m.publisher.Stop())
	}
	if m.sender != nil {
		errs = append(errs, m.sender.Close())
	}
	if m.transport != nil {
		errs = append(errs, m.transport.Close())
	}
	return errors.Join(errs...)
}

// withPortAudio runs fn between Initialize and Terminate.
func withPortAudio(fn func() error) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return fn()
}
