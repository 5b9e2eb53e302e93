// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ws2803 displays a test pattern on a WS2803 LED strand.
//
// Without -data and -clk the first SPI port is used. When there is no SPI
// port, or with -console, the strand is emulated on the terminal.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/GermanBionicSystems/ledstrip/gpiomem"
	"github.com/GermanBionicSystems/ledstrip/screen1d"
	"github.com/GermanBionicSystems/ledstrip/ws2803"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// strand is an opened device and what must be closed with it.
type strand struct {
	dev     *ws2803.Dev
	closers []io.Closer
}

func (s *strand) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if e := s.closers[i].Close(); err == nil {
			err = e
		}
	}
	return err
}

// open selects the output described by c. console is where the emulator
// renders, nil meaning stdout.
func open(c *config, console io.Writer) (*strand, error) {
	f, err := c.freq()
	if err != nil {
		return nil, err
	}
	o := &ws2803.Opts{NumPixels: c.Pixels, Freq: f}
	s := &strand{}

	if c.Data != "" {
		data, clk, err := pins(c, s)
		if err != nil {
			s.Close()
			return nil, err
		}
		if s.dev, err = ws2803.NewPins(data, clk, o); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}

	if !c.Console {
		p, err := spireg.Open(c.SPI)
		if err == nil {
			s.closers = append(s.closers, p)
			if s.dev, err = ws2803.NewSPI(p, o); err != nil {
				s.Close()
				return nil, err
			}
			return s, nil
		}
		log.Printf("Failed to find a SPI port, printing at the console: %v", err)
	}
	e := screen1d.New(&screen1d.Opts{X: c.Pixels, W: console})
	s.closers = append(s.closers, e)
	if s.dev, err = ws2803.NewSPI(e, o); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// pins returns the data and clock pins named in c.
func pins(c *config, s *strand) (gpio.PinOut, gpio.PinOut, error) {
	if !c.GPIOMem {
		data := gpioreg.ByName(c.Data)
		if data == nil {
			return nil, nil, fmt.Errorf("unknown pin %q", c.Data)
		}
		clk := gpioreg.ByName(c.Clock)
		if clk == nil {
			return nil, nil, fmt.Errorf("unknown pin %q", c.Clock)
		}
		return data, clk, nil
	}
	dn, err := strconv.Atoi(c.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid GPIO number %q", c.Data)
	}
	cn, err := strconv.Atoi(c.Clock)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid GPIO number %q", c.Clock)
	}
	b, err := gpiomem.Open(gpiomem.DefaultPath)
	if err != nil {
		return nil, nil, err
	}
	s.closers = append(s.closers, b)
	data, err := b.Pin(dn)
	if err != nil {
		return nil, nil, err
	}
	clk, err := b.Pin(cn)
	if err != nil {
		return nil, nil, err
	}
	return data, clk, nil
}

// show draws the configured pattern on dev.
func show(c *config, dev *ws2803.Dev) error {
	if c.Halt {
		return dev.Halt()
	}
	img, err := render(c, dev.NumPixels())
	if err != nil {
		return err
	}
	// Set the brightness first so the pattern is scaled when written, not
	// rescaled afterward.
	dev.SetBrightness(uint8(c.Brightness))
	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func mainImpl() error {
	c, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if _, err := host.Init(); err != nil {
		return err
	}
	s, err := open(c, nil)
	if err != nil {
		return err
	}
	defer s.Close()
	log.Printf("Using %s", s.dev)
	return show(c, s.dev)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ws2803: %s.\n", err)
		os.Exit(1)
	}
}
