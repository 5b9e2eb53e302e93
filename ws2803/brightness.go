// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws2803

// scale is the stored brightness.
//
// When ok is false, colors are written literally. Otherwise n is the
// requested brightness plus one and is used as the numerator of an 8x8 bit
// fixed point multiply.
type scale struct {
	n  uint8
	ok bool
}

func newScale(b uint8) scale {
	if b == 255 {
		return scale{}
	}
	return scale{n: b + 1, ok: true}
}

// level returns the public brightness s was created from. A literal scale
// reads as 255.
func (s scale) level() uint8 {
	if !s.ok {
		return 255
	}
	return s.n - 1
}

func (s scale) apply(c uint8) uint8 {
	if !s.ok {
		return c
	}
	return uint8((uint16(c) * uint16(s.n)) >> 8)
}

// rescaleFactor returns the 8.8 fixed point factor converting bytes written
// at brightness old into bytes at brightness b.
func rescaleFactor(old, b uint8) uint16 {
	switch {
	case old == 0:
		return 0
	case b == 255:
		return 65535 / uint16(old)
	default:
		return ((uint16(b+1) << 8) - 1) / uint16(old)
	}
}

// rescale multiplies every byte of buf by f. Results above 255 saturate.
//
// Scaling up cannot restore precision lost when the data was written at a
// lower brightness; only redrawing does.
func rescale(buf []byte, f uint16) {
	for i, c := range buf {
		v := (uint32(c) * uint32(f)) >> 8
		if v > 255 {
			v = 255
		}
		buf[i] = byte(v)
	}
}
