// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ws2803

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// DefaultFreq is the SPI clock used when Opts.Freq is 0. The datasheet
	// recommends not going above 2MHz without impedance matching resistors.
	DefaultFreq = 2 * physic.MegaHertz
	// LatchDelay is how long the clock line is held low after a frame so the
	// strand displays it.
	LatchDelay = time.Millisecond
	// MaxPixels is the longest supported strand.
	MaxPixels = 65535
)

var (
	// ErrLength is returned when a strand length is out of range.
	ErrLength = errors.New("ws2803: invalid strand length")
	// ErrNotBegun is returned by Show when Begin was not called.
	ErrNotBegun = errors.New("ws2803: not begun")
	// ErrNoPort is returned when hardware output is used without a SPI port.
	ErrNoPort = errors.New("ws2803: no SPI port")
)

// sleep is replaced in tests.
var sleep = time.Sleep

// Opts defines the options for the device.
type Opts struct {
	// NumPixels is the number of RGB pixels in the strand.
	NumPixels int
	// Freq is the SPI clock frequency. It is ignored when bit-banging.
	Freq physic.Frequency
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	NumPixels: 150,
	Freq:      DefaultFreq,
}

// Dev is a strand of WS2803 RGB pixels.
//
// Pixels are stored in device order, 3 bytes per pixel, already scaled by
// the brightness in effect when they were set.
//
// Dev is not safe for concurrent use. Show blocks until the whole frame is
// sent and latched; the buffer must not be modified meanwhile.
type Dev struct {
	pixels []byte
	scale  scale
	freq   physic.Frequency
	out    output
	begun  bool
}

// New returns an empty strand using hardware SPI without any port.
//
// UpdateLength and UseSPI or UsePins must be called before Begin.
func New() *Dev {
	return &Dev{freq: DefaultFreq, out: &spiOutput{freq: DefaultFreq}}
}

// NewSPI returns a strand driven through the hardware SPI port p.
//
// The port is connected in mode 0 at o.Freq.
func NewSPI(p spi.Port, o *Opts) (*Dev, error) {
	d, err := newDev(o)
	if err != nil {
		return nil, err
	}
	if err := d.UseSPI(p); err != nil {
		return nil, err
	}
	if err := d.Begin(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewPins returns a strand driven by toggling the data and clock pins.
func NewPins(data, clk gpio.PinOut, o *Opts) (*Dev, error) {
	d, err := newDev(o)
	if err != nil {
		return nil, err
	}
	if err := d.UsePins(data, clk); err != nil {
		return nil, err
	}
	if err := d.Begin(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(o *Opts) (*Dev, error) {
	if o == nil {
		o = &DefaultOpts
	}
	d := New()
	if o.Freq != 0 {
		d.freq = o.Freq
	}
	if err := d.UpdateLength(o.NumPixels); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("WS2803{%d, %s}", d.NumPixels(), d.out)
}

// UpdateLength changes the strand length to n pixels.
//
// All pixels are cleared. The output selection is left untouched. On error
// the strand is left empty.
func (d *Dev) UpdateLength(n int) error {
	if n < 0 || n > MaxPixels {
		d.pixels = nil
		return fmt.Errorf("%w: %d", ErrLength, n)
	}
	d.pixels = make([]byte, 3*n)
	return nil
}

// UseSPI switches to hardware SPI output on p.
//
// If Begin was already called the port is connected right away. Pins used
// before are left in their current state.
func (d *Dev) UseSPI(p spi.Port) error {
	if s, ok := d.out.(*spiOutput); !ok || s.port != p {
		d.switchTo(&spiOutput{port: p, freq: d.freq})
	}
	if d.begun {
		return d.out.begin()
	}
	return nil
}

// UsePins switches to bit-banged output on the data and clock pins.
//
// If Begin was already called the SPI connection is released and both pins
// are driven low immediately. Otherwise this happens in Begin.
func (d *Dev) UsePins(data, clk gpio.PinOut) error {
	d.switchTo(&pinOutput{data: data, clk: clk})
	if d.begun {
		return d.out.begin()
	}
	return nil
}

func (d *Dev) switchTo(o output) {
	if d.begun {
		d.out.end()
	}
	d.out = o
}

// Begin initializes the selected output. It must be called before Show.
func (d *Dev) Begin() error {
	if err := d.out.begin(); err != nil {
		return err
	}
	d.begun = true
	return nil
}

// NumPixels returns the strand length.
func (d *Dev) NumPixels() int {
	return len(d.pixels) / 3
}

// Pixels returns the raw pixel buffer in device channel order.
//
// Writes to it are sent as-is on the next Show; they are not scaled by the
// brightness.
func (d *Dev) Pixels() []byte {
	return d.pixels
}

// SetPixelColor sets pixel i, scaled by the current brightness.
//
// Out of range indexes are ignored.
func (d *Dev) SetPixelColor(i int, r, g, b uint8) {
	if i < 0 || i >= d.NumPixels() {
		return
	}
	p := d.pixels[3*i : 3*i+3]
	p[0] = d.scale.apply(r)
	p[1] = d.scale.apply(g)
	p[2] = d.scale.apply(b)
}

// SetPixel sets pixel i from a packed 0xRRGGBB color.
func (d *Dev) SetPixel(i int, c uint32) {
	r, g, b := SplitColor(c)
	d.SetPixelColor(i, r, g, b)
}

// PixelColor returns pixel i as it is stored, packed as 0xRRGGBB. It
// returns 0 when i is out of range.
func (d *Dev) PixelColor(i int) uint32 {
	if i < 0 || i >= d.NumPixels() {
		return 0
	}
	p := d.pixels[3*i : 3*i+3]
	return Color(p[0], p[1], p[2])
}

// Clear sets all pixels to 0.
func (d *Dev) Clear() {
	clear(d.pixels)
}

// Brightness returns the brightness last set, 255 by default.
func (d *Dev) Brightness() uint8 {
	return d.scale.level()
}

// SetBrightness sets the output brightness, from 0 (off) to 255 (colors are
// used as is).
//
// Pixels already in the buffer are scaled once to the new level, since
// there is no time to do it while sending. This is lossy: raising the
// brightness makes the quantization of the old data visible. Redraw the
// pixels to avoid it.
func (d *Dev) SetBrightness(b uint8) {
	s := newScale(b)
	if s == d.scale {
		return
	}
	rescale(d.pixels, rescaleFactor(d.scale.level(), b))
	d.scale = s
}

// Show sends the buffer to the strand and waits for it to latch.
func (d *Dev) Show() error {
	if !d.begun {
		return ErrNotBegun
	}
	return d.send(d.pixels)
}

func (d *Dev) send(b []byte) error {
	if err := d.out.send(b); err != nil {
		return err
	}
	sleep(LatchDelay)
	return nil
}

// Halt turns all the LEDs off. The buffer is kept.
func (d *Dev) Halt() error {
	if !d.begun {
		return nil
	}
	return d.send(make([]byte, len(d.pixels)))
}

// Write accepts a stream of raw pixels in device order, scales it by the
// brightness and shows it.
//
// Bytes past the end of the strand are ignored.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("ws2803: invalid RGB stream length")
	}
	n := copy(d.pixels, pixels)
	for i := range n {
		d.pixels[i] = d.scale.apply(d.pixels[i])
	}
	if err := d.Show(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer. The strand is one pixel high.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.NumPixels(), 1)
}

// Draw implements display.Drawer.
//
// The first row of src is written to the strand, then it is shown.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX := r.Min.X - srcR.Min.X
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		c := color.NRGBAModel.Convert(src.At(sX, srcR.Min.Y)).(color.NRGBA)
		d.SetPixelColor(sX+deltaX, c.R, c.G, c.B)
	}
	return d.Show()
}

// Color packs r, g and b as 0xRRGGBB, whatever the strand channel order.
func Color(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// SplitColor unpacks a 0xRRGGBB color.
func SplitColor(c uint32) (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
