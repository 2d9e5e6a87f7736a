// SPDX-License-Identifier: MIT
package effect

import "errors"

var (
	ErrMalformedBuffer     = errors.New("buffer length is not a multiple of the sample size")
	ErrBufferLocked        = errors.New("frame buffer is already locked")
	ErrFrameReadOnly       = errors.New("frame is read-only")
	ErrUnsupportedEncoding = errors.New("unsupported encoding properties")
)
