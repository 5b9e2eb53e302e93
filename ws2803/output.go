// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws2803

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// output is the way frames leave the Dev. It is either *spiOutput or
// *pinOutput.
type output interface {
	fmt.Stringer
	// begin prepares the hardware.
	begin() error
	// end releases what begin acquired, when switching to another output.
	end()
	// send shifts b out, MSB first, and blocks until done.
	send(b []byte) error
}

// spiOutput sends frames through a hardware SPI port.
type spiOutput struct {
	port spi.Port
	freq physic.Frequency
	c    spi.Conn
}

func (s *spiOutput) String() string {
	if s.port == nil {
		return "SPI(none)"
	}
	return fmt.Sprintf("SPI(%s)", s.port)
}

func (s *spiOutput) begin() error {
	if s.port == nil {
		return ErrNoPort
	}
	if s.c != nil {
		return nil
	}
	// Clock idles low, data is sampled on the rising edge.
	c, err := s.port.Connect(s.freq, spi.Mode0, 8)
	if err != nil {
		return fmt.Errorf("ws2803: %w", err)
	}
	s.c = c
	return nil
}

func (s *spiOutput) end() {
	s.c = nil
}

func (s *spiOutput) send(b []byte) error {
	if s.c == nil {
		return ErrNotBegun
	}
	chunk := len(b)
	if l, ok := s.c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m > 0 {
			chunk = m
		}
	}
	for len(b) != 0 {
		n := min(len(b), chunk)
		if err := s.c.Tx(b[:n], nil); err != nil {
			return fmt.Errorf("ws2803: %w", err)
		}
		b = b[n:]
	}
	return nil
}

// pinOutput bit-bangs frames on a data and a clock pin.
type pinOutput struct {
	data gpio.PinOut
	clk  gpio.PinOut
}

func (p *pinOutput) String() string {
	return fmt.Sprintf("Pins(data=%s, clk=%s)", p.data, p.clk)
}

// begin drives both lines low, which makes them outputs.
func (p *pinOutput) begin() error {
	var eh errorHandler
	eh.out(p.data, gpio.Low)
	eh.out(p.clk, gpio.Low)
	return eh.err
}

// end leaves the pins as they are.
func (p *pinOutput) end() {
}

func (p *pinOutput) send(b []byte) error {
	var eh errorHandler
	for _, v := range b {
		for bit := byte(0x80); bit != 0; bit >>= 1 {
			eh.out(p.data, gpio.Level(v&bit != 0))
			eh.out(p.clk, gpio.High)
			eh.out(p.clk, gpio.Low)
		}
		if eh.err != nil {
			break
		}
	}
	return eh.err
}

// errorHandler keeps the first error of a sequence of pin writes.
type errorHandler struct {
	err error
}

func (eh *errorHandler) out(p gpio.PinOut, l gpio.Level) {
	if eh.err != nil {
		return
	}
	if err := p.Out(l); err != nil {
		eh.err = fmt.Errorf("ws2803: %s: %w", p, err)
	}
}
