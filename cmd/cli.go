package cmd

import (
	"context"
	"fmt"

	"audiofx/internal/audio"
	"audiofx/internal/config"
	"audiofx/internal/effect"
	applog "audiofx/internal/log"
	"audiofx/pkg/build"

	"github.com/spf13/cobra"
)

// flags mirrors the command line. Values are copied into the loaded
// configuration only when the flag was given.
type flags struct {
	configPath      string
	device          int
	framesPerBuffer int
	lowLatency      bool
	fadeDuration    float64
	noFade          bool
	gainDB          float64
	noGain          bool
	bitDepth        int
	logLevel        string
	pickDevice      bool
	ws              string
	udp             string
	spectrum        bool
	record          string
	output          string
}

// Execute parses args and runs the selected command until it finishes or ctx
// is cancelled.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.Get()
	f := &flags{}
	cfg := config.NewConfig()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Apply fade and gain effects to float PCM audio",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(f.configPath)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, loaded); err != nil {
				return err
			}
			*cfg = *loaded

			level, _ := applog.ParseLevel(cfg.LogLevel)
			applog.SetLevel(level)
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()

	pf.StringVar(&f.configPath, "config", "",
		"Path to a YAML configuration file (default ./"+config.DefaultConfigFile+" if present)")
	pf.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn, error")

	// Audio Device Configuration
	pf.IntVarP(&f.device, "device", "d", config.DefaultOutputDevice,
		"Output device ID. Use the 'devices' command to see available devices.")
	pf.BoolVarP(&f.pickDevice, "pick-device", "p", false,
		"Choose the output device interactively")
	pf.IntVarP(&f.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.BoolVarP(&f.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time playback")

	// Effects
	pf.Float64Var(&f.fadeDuration, "fade-duration", config.DefaultFadeDuration,
		"Fade in/out length in seconds")
	pf.BoolVar(&f.noFade, "no-fade", false, "Disable the fade effect")
	pf.Float64Var(&f.gainDB, "gain-db", config.DefaultGainDecibels,
		"Gain in decibels")
	pf.BoolVar(&f.noGain, "no-gain", false, "Disable the gain effect")

	// Recording
	pf.IntVar(&f.bitDepth, "bit-depth", config.DefaultBitDepth,
		"Bit depth of written WAV files (16, 24 or 32)")

	// Meters
	pf.StringVar(&f.ws, "ws", "",
		"Serve level readings over WebSocket on this address")
	pf.StringVar(&f.udp, "udp", "",
		"Send level and spectrum packets over UDP to this address")
	pf.BoolVar(&f.spectrum, "spectrum", config.DefaultSpectrumEnabled,
		"Compute a spectrum of the processed audio")

	renderCmd := &cobra.Command{
		Use:   "render <input.wav>",
		Short: "Process a WAV file and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "render"
			cfg.InputFile = args[0]
			cfg.OutputFile = f.output
			return runPipeline(cmd.Context(), cfg)
		},
	}
	renderCmd.Flags().StringVarP(&f.output, "output", "o", "",
		"Output WAV file (required)")
	_ = renderCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(renderCmd)

	playCmd := &cobra.Command{
		Use:   "play <input.wav>",
		Short: "Process a WAV file and play it on an output device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "play"
			cfg.InputFile = args[0]
			cfg.OutputFile = f.record
			cfg.PickDevice = f.pickDevice
			return runPipeline(cmd.Context(), cfg)
		},
	}
	playCmd.Flags().StringVarP(&f.record, "record", "r", "",
		"Also record the processed audio to this WAV file")
	rootCmd.AddCommand(playCmd)

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "devices"
			return withPortAudio(audio.ListDevices)
		},
	}
	rootCmd.AddCommand(devicesCmd)

	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "List the encodings the effects accept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "formats"
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Supported encodings:\n")
			for _, enc := range effect.SupportedEncodings() {
				fmt.Fprintf(out, "  %s\n", enc)
			}
			return nil
		},
	}
	rootCmd.AddCommand(formatsCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), build.Get())
			return nil
		},
	}
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// apply copies every flag the user set onto cfg and validates the result.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("device") {
		cfg.Audio.OutputDevice = f.device
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = f.framesPerBuffer
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = f.lowLatency
	}
	if changed("fade-duration") {
		cfg.Effects.Fade.Duration = f.fadeDuration
	}
	if changed("no-fade") {
		cfg.Effects.Fade.Enabled = !f.noFade
	}
	if changed("gain-db") {
		cfg.Effects.Gain.Decibels = f.gainDB
	}
	if changed("no-gain") {
		cfg.Effects.Gain.Enabled = !f.noGain
	}
	if changed("bit-depth") {
		cfg.Recording.BitDepth = f.bitDepth
	}
	if changed("ws") {
		cfg.Transport.WebSocketEnabled = true
		cfg.Transport.WebSocketAddress = f.ws
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = true
		cfg.Transport.UDPTargetAddress = f.udp
	}
	if changed("spectrum") {
		cfg.Analysis.SpectrumEnabled = f.spectrum
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
