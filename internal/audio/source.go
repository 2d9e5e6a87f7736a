// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"audiofx/internal/effect"
	applog "audiofx/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag; float and extensible files are
// rejected.
const wavFormatPCM = 1

// FrameSource delivers interleaved float32 frames to the engine.
type FrameSource interface {
	// Format describes the frames ReadFrame produces.
	Format() *audio.Format
	// Duration is the total length, or 0 when unknown.
	Duration() time.Duration
	// ReadFrame refills frame and sets its relative time. It returns io.EOF
	// once no samples remain.
	ReadFrame(frame *effect.Frame) error
	Close() error
}

// FileSource decodes an integer PCM WAV file.
type FileSource struct {
	file            *os.File
	decoder         *wav.Decoder
	format          *audio.Format
	framesPerBuffer int
	norm            float64 // 1 / 2^(bitDepth-1)

	intBuf     *audio.IntBuffer
	framesRead int64
	duration   time.Duration
}

var _ FrameSource = (*FileSource)(nil)

// OpenFile opens a 16, 24 or 32-bit PCM WAV file for reading in frames of
// framesPerBuffer sample frames.
func OpenFile(path string, framesPerBuffer int) (*FileSource, error) {
	if framesPerBuffer < 1 {
		return nil, fmt.Errorf("frames per buffer must be positive, got %d", framesPerBuffer)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := newFileSource(file, framesPerBuffer)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func newFileSource(file *os.File, framesPerBuffer int) (*FileSource, error) {
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: audio format tag %d, only integer PCM is supported",
			ErrUnsupportedFormat, decoder.WavAudioFormat)
	}
	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}
	channels := int(decoder.NumChans)
	if channels < 1 || decoder.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, channels, decoder.SampleRate)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to find PCM data: %w", err)
	}

	format := &audio.Format{NumChannels: channels, SampleRate: int(decoder.SampleRate)}
	totalFrames := int64(decoder.PCMSize) / int64(channels*bitDepth/8)

	src := &FileSource{
		file:            file,
		decoder:         decoder,
		format:          format,
		framesPerBuffer: framesPerBuffer,
		norm:            1 / float64(int64(1)<<(bitDepth-1)),
		intBuf: &audio.IntBuffer{
			Format:         format,
			Data:           make([]int, framesPerBuffer*channels),
			SourceBitDepth: bitDepth,
		},
		duration: framesToDuration(totalFrames, format.SampleRate),
	}

	applog.Infof("FileSource: %d Hz, %d channels, %d-bit, %s", format.SampleRate, channels, bitDepth, src.duration)
	return src, nil
}

func (s *FileSource) Format() *audio.Format { return s.format }

func (s *FileSource) Duration() time.Duration { return s.duration }

// ReadFrame decodes up to framesPerBuffer frames into frame. The final frame
// of a file may be shorter; a trailing partial sample frame is dropped.
func (s *FileSource) ReadFrame(frame *effect.Frame) error {
	channels := s.format.NumChannels
	s.intBuf.Data = s.intBuf.Data[:s.framesPerBuffer*channels]

	n, err := s.decoder.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to decode PCM: %w", err)
	}
	n -= n % channels
	if n == 0 {
		return io.EOF
	}

	buf := frame.Buffer()
	if cap(buf.Data) < n {
		buf.Data = make([]float32, n)
	}
	buf.Data = buf.Data[:n]
	buf.Format = s.format
	for i, v := range s.intBuf.Data[:n] {
		buf.Data[i] = float32(float64(v) * s.norm)
	}

	frame.SetRelativeTime(framesToDuration(s.framesRead, s.format.SampleRate))
	s.framesRead += int64(n / channels)
	return nil
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

func framesToDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
