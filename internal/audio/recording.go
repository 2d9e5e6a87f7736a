package audio

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	applog "audiofx/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// StartRecording writes every processed frame to filename as integer PCM
// WAV at the configured bit depth. The engine must be configured first.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return ErrAlreadyRecording
	}
	if !e.configured {
		return ErrNotConfigured
	}

	format := e.frame.Format()
	bitDepth := e.config.Recording.BitDepth

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, format.SampleRate, bitDepth, format.NumChannels, wavFormatPCM)
	e.sampleScale = float64(int64(1)<<(bitDepth-1) - 1)
	e.sampleBuf = &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, e.config.Audio.FramesPerBuffer*format.NumChannels),
		SourceBitDepth: bitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("Engine: Recording %d-bit WAV to %s", bitDepth, filename)
	return nil
}

// writeRecording converts samples to integers, clamping to full scale.
func (e *Engine) writeRecording(samples []float32) {
	if cap(e.sampleBuf.Data) < len(samples) {
		e.sampleBuf.Data = make([]int, len(samples))
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:len(samples)]
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		e.sampleBuf.Data[i] = int(math.Round(v * e.sampleScale))
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: Error writing to WAV file: %v", err)
	}
}

// StopRecording finalizes the WAV header and closes the file. It is a no-op
// when not recording.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return fmt.Errorf("failed to finalize WAV file: %w", err)
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// IsRecording reports whether processed frames are being written to disk.
func (e *Engine) IsRecording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}
