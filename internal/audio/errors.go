package audio

import "errors"

var (
	ErrNotConfigured     = errors.New("audio: engine has not been configured for a format")
	ErrNotInPlace        = errors.New("audio: effect does not process frames in place")
	ErrAlreadyRecording  = errors.New("audio: already recording")
	ErrUnsupportedFormat = errors.New("audio: unsupported WAV format")
)
