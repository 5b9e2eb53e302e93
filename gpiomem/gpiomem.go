// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiomem drives Broadcom BCM283x GPIO outputs (Raspberry Pi 1 to 4)
// by writing the memory-mapped GPIO registers directly.
//
// Each Pin caches the address of its set and clear registers and its bit
// mask, so a write is a single store. This is what bit-banged protocols
// like the WS2803 need to reach a useful clock rate.
//
// /dev/gpiomem only exposes the GPIO block and does not require root.
//
// # Datasheet
//
// https://datasheets.raspberrypi.com/bcm2835/bcm2835-peripherals.pdf
package gpiomem

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultPath is the character device exposing the GPIO block.
	DefaultPath = "/dev/gpiomem"
	// NumPins is the number of GPIO lines in the block.
	NumPins = 54
)

var (
	// ErrClosed is returned when using a pin of a closed Bank.
	ErrClosed = errors.New("gpiomem: bank closed")
	// ErrNotImplemented is returned by unsupported pin functions.
	ErrNotImplemented = errors.New("gpiomem: not implemented")
)

// registers is the start of the GPIO register block. See page 90 of the
// datasheet.
type registers struct {
	fsel [6]uint32 // GPIO Function Select
	_    uint32
	set  [2]uint32 // GPIO Pin Output Set
	_    uint32
	clr  [2]uint32 // GPIO Pin Output Clear
	_    uint32
	lev  [2]uint32 // GPIO Pin Level
}

const mapSize = int(unsafe.Sizeof(registers{}))

// Bank is a mapped GPIO register block.
type Bank struct {
	mu   sync.Mutex
	mem  mmap.MMap
	regs *registers
}

// Open maps the GPIO registers exposed by the file at path, usually
// DefaultPath.
func Open(path string) (*Bank, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("gpiomem: %w", err)
	}
	// The mapping stays valid once the file is closed.
	defer f.Close()
	m, err := mmap.MapRegion(f, mapSize, mmap.RDWR, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("gpiomem: couldn't map %s: %w", path, err)
	}
	return &Bank{mem: m, regs: (*registers)(unsafe.Pointer(&m[0]))}, nil
}

func (b *Bank) String() string {
	return "gpiomem"
}

// Close unmaps the registers. Pins of the bank become unusable.
func (b *Bank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.regs == nil {
		return nil
	}
	b.regs = nil
	return b.mem.Unmap()
}

// Pin returns GPIO number n.
//
// The pin is switched to output on its first Out call.
func (b *Bank) Pin(n int) (*Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.regs == nil {
		return nil, ErrClosed
	}
	if n < 0 || n >= NumPins {
		return nil, fmt.Errorf("gpiomem: invalid pin %d", n)
	}
	return &Pin{
		bank:   b,
		number: n,
		name:   fmt.Sprintf("GPIO%d", n),
		set:    &b.regs.set[n/32],
		clr:    &b.regs.clr[n/32],
		lev:    &b.regs.lev[n/32],
		mask:   1 << uint(n%32),
	}, nil
}

// setFunction writes the 3 bit function select of pin n.
func (b *Bank) setFunction(n int, fn uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.regs == nil {
		return ErrClosed
	}
	shift := uint((n % 10) * 3)
	b.regs.fsel[n/10] = (b.regs.fsel[n/10] &^ (7 << shift)) | fn<<shift
	return nil
}

// Pin is one GPIO line of a Bank.
type Pin struct {
	bank   *Bank
	number int
	name   string
	set    *uint32
	clr    *uint32
	lev    *uint32
	mask   uint32
	output bool
}

// Halt implements conn.Resource.
func (p *Pin) Halt() error {
	return nil
}

// Name returns the name of the GPIO pin.
func (p *Pin) Name() string {
	return p.name
}

// Number returns the number of the GPIO pin.
func (p *Pin) Number() int {
	return p.number
}

// Function returns "Out" once the pin was used as an output.
func (p *Pin) Function() string {
	if p.output {
		return "Out"
	}
	return "In"
}

// Out sets the pin level.
func (p *Pin) Out(l gpio.Level) error {
	if !p.output {
		if err := p.bank.setFunction(p.number, 1); err != nil {
			return err
		}
		p.output = true
	} else if p.bank.regs == nil {
		return ErrClosed
	}
	if l {
		*p.set = p.mask
	} else {
		*p.clr = p.mask
	}
	return nil
}

// Read returns the current pin level.
func (p *Pin) Read() gpio.Level {
	if p.bank.regs == nil {
		return gpio.Low
	}
	return *p.lev&p.mask != 0
}

// PWM is not implemented.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (p *Pin) String() string {
	return p.name
}

var _ gpio.PinOut = &Pin{}
