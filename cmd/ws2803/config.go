// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// config is the strand setup, read from a YAML file and from flags.
type config struct {
	Pixels     int      `yaml:"pixels"`
	SPI        string   `yaml:"spi"`
	Hz         string   `yaml:"hz"`
	Data       string   `yaml:"data"`
	Clock      string   `yaml:"clock"`
	GPIOMem    bool     `yaml:"gpiomem"`
	Brightness int      `yaml:"brightness"`
	Pattern    string   `yaml:"pattern"`
	Colors     []string `yaml:"colors"`
	Image      string   `yaml:"image"`
	Console    bool     `yaml:"console"`
	Halt       bool     `yaml:"halt"`
}

func defaultConfig() config {
	return config{
		Pixels:     16,
		Brightness: 255,
		Pattern:    "solid",
		Colors:     []string{"ffffff"},
	}
}

// parseArgs parses the command line. Flags explicitly set override the
// values from the -config file.
func parseArgs(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("ws2803", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := defaultConfig()
	path := fs.String("config", "", "YAML configuration file")
	fs.IntVar(&f.Pixels, "n", f.Pixels, "number of pixels in the strand")
	fs.StringVar(&f.SPI, "spi", f.SPI, "SPI port to use")
	fs.StringVar(&f.Hz, "hz", f.Hz, "SPI clock, e.g. 2MHz")
	fs.StringVar(&f.Data, "data", f.Data, "data pin, bit-bangs the strand when set with -clk")
	fs.StringVar(&f.Clock, "clk", f.Clock, "clock pin")
	fs.BoolVar(&f.GPIOMem, "gpiomem", f.GPIOMem, "-data and -clk are GPIO numbers driven through /dev/gpiomem")
	fs.IntVar(&f.Brightness, "brightness", f.Brightness, "brightness, 0 to 255")
	fs.StringVar(&f.Pattern, "pattern", f.Pattern, "solid, gradient, channels or image")
	colors := fs.String("color", strings.Join(f.Colors, ","), "comma separated RRGGBB colors")
	fs.StringVar(&f.Image, "image", f.Image, "PNG file for the image pattern")
	fs.BoolVar(&f.Console, "console", f.Console, "display on the terminal instead of a strand")
	fs.BoolVar(&f.Halt, "halt", f.Halt, "turn the strand off and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	f.Colors = strings.Split(*colors, ",")
	if *path == "" {
		return &f, f.validate()
	}

	c := defaultConfig()
	raw, err := os.ReadFile(*path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", *path, err)
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "n":
			c.Pixels = f.Pixels
		case "spi":
			c.SPI = f.SPI
		case "hz":
			c.Hz = f.Hz
		case "data":
			c.Data = f.Data
		case "clk":
			c.Clock = f.Clock
		case "gpiomem":
			c.GPIOMem = f.GPIOMem
		case "brightness":
			c.Brightness = f.Brightness
		case "pattern":
			c.Pattern = f.Pattern
		case "color":
			c.Colors = f.Colors
		case "image":
			c.Image = f.Image
		case "console":
			c.Console = f.Console
		case "halt":
			c.Halt = f.Halt
		}
	})
	return &c, c.validate()
}

func (c *config) validate() error {
	if c.Brightness < 0 || c.Brightness > 255 {
		return fmt.Errorf("brightness %d out of range", c.Brightness)
	}
	if (c.Data == "") != (c.Clock == "") {
		return errors.New("specify both -data and -clk")
	}
	if c.GPIOMem && c.Data == "" {
		return errors.New("-gpiomem requires -data and -clk")
	}
	if _, err := c.freq(); err != nil {
		return err
	}
	_, err := c.colors()
	return err
}

// freq returns the SPI clock, 0 meaning the driver default.
func (c *config) freq() (physic.Frequency, error) {
	var f physic.Frequency
	if c.Hz == "" {
		return 0, nil
	}
	if err := f.Set(c.Hz); err != nil {
		return 0, fmt.Errorf("invalid SPI clock %q: %w", c.Hz, err)
	}
	return f, nil
}

// colors returns the configured colors packed as 0xRRGGBB.
func (c *config) colors() ([]uint32, error) {
	out := make([]uint32, 0, len(c.Colors))
	for _, s := range c.Colors {
		s = strings.TrimPrefix(strings.TrimSpace(s), "#")
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 16, 24)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		out = append(out, uint32(v))
	}
	if len(out) == 0 {
		return nil, errors.New("no color specified")
	}
	return out, nil
}
