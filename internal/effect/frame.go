// SPDX-License-Identifier: MIT
package effect

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
)

// SampleSize is the size in bytes of one 32-bit float sample.
const SampleSize = 4

// AccessMode selects what a BufferView may do with the samples it exposes.
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessReadWrite
)

// Frame is one unit of interleaved float32 samples handed to an effect chain.
// The host owns the frame; effects only see its samples through a BufferView
// obtained with LockBuffer and released before ProcessFrame returns.
type Frame struct {
	buffer       *audio.Float32Buffer
	relativeTime time.Duration
	hasTime      bool
	readOnly     bool
	locked       atomic.Int32
}

// NewFrame wraps buf as a writable frame with no timeline position.
func NewFrame(buf *audio.Float32Buffer) *Frame {
	if buf == nil {
		buf = &audio.Float32Buffer{}
	}
	return &Frame{buffer: buf}
}

// NewFrameFromBytes decodes little-endian float32 samples. The byte length
// must be a whole number of samples; anything else is rejected rather than
// truncated.
func NewFrameFromBytes(data []byte, format *audio.Format) (*Frame, error) {
	if len(data)%SampleSize != 0 {
		return nil, ErrMalformedBuffer
	}
	samples := make([]float32, len(data)/SampleSize)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*SampleSize:]))
	}
	return NewFrame(&audio.Float32Buffer{
		Format:         format,
		Data:           samples,
		SourceBitDepth: 32,
	}), nil
}

// Bytes encodes the frame's samples as little-endian float32.
func (f *Frame) Bytes() []byte {
	out := make([]byte, len(f.buffer.Data)*SampleSize)
	for i, s := range f.buffer.Data {
		binary.LittleEndian.PutUint32(out[i*SampleSize:], math.Float32bits(s))
	}
	return out
}

// Buffer gives the host direct access to the backing buffer, e.g. to refill
// it from a decoder or hand it to an output device. Effects must not use it.
func (f *Frame) Buffer() *audio.Float32Buffer {
	return f.buffer
}

// Format returns the PCM format of the backing buffer, which may be nil.
func (f *Frame) Format() *audio.Format {
	return f.buffer.Format
}

// Len returns the number of samples (not frames) in the buffer.
func (f *Frame) Len() int {
	return len(f.buffer.Data)
}

func (f *Frame) SetRelativeTime(d time.Duration) {
	f.relativeTime = d
	f.hasTime = true
}

func (f *Frame) ClearRelativeTime() {
	f.relativeTime = 0
	f.hasTime = false
}

// RelativeTime returns the frame's position within its track, if known.
func (f *Frame) RelativeTime() (time.Duration, bool) {
	return f.relativeTime, f.hasTime
}

func (f *Frame) SetReadOnly(readOnly bool) {
	f.readOnly = readOnly
}

func (f *Frame) IsReadOnly() bool {
	return f.readOnly
}

// LockBuffer grants scoped access to the frame's samples. Only one view may
// exist at a time and the caller must Release it before returning control to
// the host. Write access to a read-only frame is refused.
func (f *Frame) LockBuffer(mode AccessMode) (BufferView, error) {
	if mode != AccessRead && f.readOnly {
		return BufferView{}, ErrFrameReadOnly
	}
	if !f.locked.CompareAndSwap(0, 1) {
		return BufferView{}, ErrBufferLocked
	}
	return BufferView{frame: f, samples: f.buffer.Data, mode: mode}, nil
}

// BufferView is a bounds-checked window onto a locked frame's samples.
// It is returned by value so locking a frame does not allocate, and it is
// invalid after Release.
type BufferView struct {
	frame   *Frame
	samples []float32
	mode    AccessMode
}

// Len returns the number of float32 samples in the view.
func (v *BufferView) Len() int {
	return len(v.samples)
}

func (v *BufferView) At(i int) float32 {
	return v.samples[i]
}

// Set writes one sample. Writing through a read-only view is a programming
// error and panics.
func (v *BufferView) Set(i int, sample float32) {
	if v.mode == AccessRead {
		panic("effect: write through read-only buffer view")
	}
	v.samples[i] = sample
}

// Scale multiplies every sample by amount in place.
func (v *BufferView) Scale(amount float32) {
	if v.mode == AccessRead {
		panic("effect: write through read-only buffer view")
	}
	for i := range v.samples {
		v.samples[i] *= amount
	}
}

// Release drops the view's reference to the samples and unlocks the frame.
// Calling Release more than once is safe.
func (v *BufferView) Release() {
	if v.frame == nil {
		return
	}
	v.samples = nil
	v.frame.locked.Store(0)
	v.frame = nil
}
