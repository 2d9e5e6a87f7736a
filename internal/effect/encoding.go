// SPDX-License-Identifier: MIT
package effect

import (
	"fmt"
	"slices"

	"github.com/go-audio/audio"
)

const (
	MediaTypeAudio = "Audio"
	SubtypeFloat   = "Float"
	SubtypePCM     = "PCM"
)

// EncodingProperties describes a PCM stream format an effect can accept.
type EncodingProperties struct {
	Type          string
	Subtype       string
	SampleRate    uint32
	ChannelCount  uint32
	BitsPerSample uint32
}

// NewFloatPCM returns 32-bit float PCM properties for the given rate and
// channel count.
func NewFloatPCM(sampleRate, channels uint32) EncodingProperties {
	return EncodingProperties{
		Type:          MediaTypeAudio,
		Subtype:       SubtypeFloat,
		SampleRate:    sampleRate,
		ChannelCount:  channels,
		BitsPerSample: 32,
	}
}

// EncodingFor returns the float PCM properties matching a go-audio format.
func EncodingFor(format *audio.Format) EncodingProperties {
	if format == nil {
		return EncodingProperties{}
	}
	return NewFloatPCM(uint32(format.SampleRate), uint32(format.NumChannels))
}

// Format converts the properties back to a go-audio format.
func (e EncodingProperties) Format() *audio.Format {
	return &audio.Format{
		NumChannels: int(e.ChannelCount),
		SampleRate:  int(e.SampleRate),
	}
}

func (e EncodingProperties) String() string {
	return fmt.Sprintf("%s/%s %d Hz, %d ch, %d bit",
		e.Type, e.Subtype, e.SampleRate, e.ChannelCount, e.BitsPerSample)
}

// supportedEncodings is shared by the fade and gain effects. Mono is only
// offered at the two lower rates.
var supportedEncodings = [...]EncodingProperties{
	NewFloatPCM(44100, 1),
	NewFloatPCM(48000, 1),
	NewFloatPCM(44100, 2),
	NewFloatPCM(48000, 2),
	NewFloatPCM(96000, 2),
	NewFloatPCM(192000, 2),
}

// SupportedEncodings returns a copy of the encoding table, so callers cannot
// modify the shared list.
func SupportedEncodings() []EncodingProperties {
	return slices.Clone(supportedEncodings[:])
}

// IsSupported reports whether enc appears in list.
func IsSupported(list []EncodingProperties, enc EncodingProperties) bool {
	return slices.Contains(list, enc)
}
