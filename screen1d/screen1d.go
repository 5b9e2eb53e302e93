// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen1d emulates a strand of WS2803 RGB pixels on the terminal
// (stdout) using ANSI color codes.
//
// The emulator is a spi.Port: connect a ws2803 device to it like to real
// hardware. Bytes shift into the strand and every complete frame is
// displayed.
//
// Useful while you are waiting for your LED strip to come by mail.
package screen1d

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts represents the options available for this display.
type Opts struct {
	// X is the number of pixels in the strand.
	X       int
	Palette *ansi256.Palette
	// W receives the rendered frames. It defaults to stdout.
	W io.Writer

	_ struct{}
}

// Dev is a 1D LED strip emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette
	freq    physic.Frequency

	shift  []byte // frame being shifted in
	pixels []byte // last latched frame
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits to do local testing of LEDs animation.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		palette: *p,
		shift:   make([]byte, 0, 3*opts.X),
		pixels:  make([]byte, 3*opts.X),
	}
}

func (d *Dev) String() string {
	return "Screen1D"
}

// Halt implements conn.Resource.
//
// It clears the display so it is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Close implements spi.PortCloser.
func (d *Dev) Close() error {
	return d.Halt()
}

// Connect implements spi.Port.
//
// Like the real strand, only 8 bit words sent MSB first with the clock
// idling low are understood.
func (d *Dev) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("screen1d: unsupported %d bits per word", bits)
	}
	if mode&spi.LSBFirst != 0 || mode&3 != spi.Mode0 {
		return nil, fmt.Errorf("screen1d: unsupported mode %s", mode)
	}
	d.freq = f
	return d, nil
}

// LimitSpeed implements spi.Port.
func (d *Dev) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Duplex implements spi.Conn.
func (d *Dev) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements spi.Conn.
//
// Bytes are appended to the frame being received. Once the whole strand is
// filled, the frame latches and is displayed.
func (d *Dev) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("screen1d: the strand is write-only")
	}
	if len(d.pixels) == 0 {
		return nil
	}
	for len(w) != 0 {
		n := min(len(w), len(d.pixels)-len(d.shift))
		d.shift = append(d.shift, w[:n]...)
		w = w[n:]
		if len(d.shift) == len(d.pixels) {
			copy(d.pixels, d.shift)
			d.shift = d.shift[:0]
			if _, err := d.refresh(); err != nil {
				return err
			}
		}
	}
	return nil
}

// TxPackets implements spi.Conn.
func (d *Dev) TxPackets(p []spi.Packet) error {
	for i := range p {
		if err := d.Tx(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	return nil
}

// Frame returns a copy of the last displayed frame.
func (d *Dev) Frame() []byte {
	return append([]byte(nil), d.pixels...)
}

// Freq returns the clock frequency the strand was connected at.
func (d *Dev) Freq() physic.Frequency {
	return d.freq
}

func (d *Dev) refresh() (int, error) {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ spi.PortCloser = &Dev{}
var _ spi.Conn = &Dev{}
var _ fmt.Stringer = &Dev{}
