// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/GermanBionicSystems/ledstrip/ws2803"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// render returns the n x 1 test image selected by c.
func render(c *config, n int) (image.Image, error) {
	if n <= 0 {
		return nil, errors.New("empty strand")
	}
	colors, err := c.colors()
	if err != nil {
		return nil, err
	}
	switch c.Pattern {
	case "solid":
		return repeat(n, colors[:1]), nil
	case "channels":
		// One primary per pixel, to check the strand wiring order.
		return repeat(n, []uint32{0xff0000, 0x00ff00, 0x0000ff}), nil
	case "gradient":
		if len(colors) == 1 {
			colors = append(colors, 0)
		}
		return gradient(n, colors), nil
	case "image":
		return scaled(c.Image, n)
	default:
		return nil, fmt.Errorf("unknown pattern %q", c.Pattern)
	}
}

func nrgba(c uint32) color.NRGBA {
	r, g, b := ws2803.SplitColor(c)
	return color.NRGBA{r, g, b, 255}
}

// repeat cycles through colors along the strand.
func repeat(n int, colors []uint32) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for x := range n {
		img.SetNRGBA(x, 0, nrgba(colors[x%len(colors)]))
	}
	return img
}

// gradient spreads colors evenly along the strand.
func gradient(n int, colors []uint32) image.Image {
	dc := gg.NewContext(n, 1)
	g := gg.NewLinearGradient(0, 0, float64(n), 0)
	for i, c := range colors {
		g.AddColorStop(float64(i)/float64(len(colors)-1), nrgba(c))
	}
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, float64(n), 1)
	dc.Fill()
	return dc.Image()
}

// scaled loads the PNG file at path and resizes it to the strand.
func scaled(path string, n int) (image.Image, error) {
	if path == "" {
		return nil, errors.New("-image is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, n, 1))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}
