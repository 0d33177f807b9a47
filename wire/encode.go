// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "io"

// Encode writes f's raw buffer to w, exactly as it would appear on the
// wire. It honors io.Writer's short-write contract by retrying until the
// whole buffer is flushed or an error occurs.
func Encode(w io.Writer, f *Frame) error {
	if w == nil || f == nil {
		return ErrInvalidArgument
	}
	buf := f.Bytes()
	for off := 0; off < len(buf); {
		n, err := w.Write(buf[off:])
		off += n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}
