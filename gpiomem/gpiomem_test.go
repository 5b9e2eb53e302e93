// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiomem

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"periph.io/x/conn/v3/gpio"
)

// Register offsets in bytes.
const (
	offFsel = 0x00
	offSet  = 0x1c
	offClr  = 0x28
	offLev  = 0x34
)

// openFake maps a plain file standing in for /dev/gpiomem.
func openFake(t *testing.T) *Bank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpiomem")
	if err := os.WriteFile(path, make([]byte, 4096), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func (b *Bank) reg(off int) uint32 {
	return binary.NativeEndian.Uint32(b.mem[off:])
}

func (b *Bank) setReg(off int, v uint32) {
	binary.NativeEndian.PutUint32(b.mem[off:], v)
}

func TestLayout(t *testing.T) {
	var r registers
	for _, tc := range []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"set", unsafe.Offsetof(r.set), offSet},
		{"clr", unsafe.Offsetof(r.clr), offClr},
		{"lev", unsafe.Offsetof(r.lev), offLev},
	} {
		if tc.got != tc.want {
			t.Errorf("%s at %#x, want %#x", tc.name, tc.got, tc.want)
		}
	}
}

func TestOut(t *testing.T) {
	b := openFake(t)
	p, err := b.Pin(17)
	if err != nil {
		t.Fatal(err)
	}
	if p.Function() != "In" {
		t.Errorf("Function() = %q before use", p.Function())
	}
	// Other pins of the same function register are kept.
	b.setReg(offFsel+4, 0x7<<(6*3)|0x1)
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if got, want := b.reg(offFsel+4), uint32(0x7<<(6*3)|0x1|1<<(7*3)); got != want {
		t.Errorf("fsel1 = %#x, want %#x", got, want)
	}
	if got := b.reg(offSet); got != 1<<17 {
		t.Errorf("set0 = %#x, want %#x", got, 1<<17)
	}
	if err := p.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if got := b.reg(offClr); got != 1<<17 {
		t.Errorf("clr0 = %#x, want %#x", got, 1<<17)
	}
	if p.Function() != "Out" {
		t.Errorf("Function() = %q after Out", p.Function())
	}
}

func TestHighBank(t *testing.T) {
	b := openFake(t)
	p, err := b.Pin(40)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if got := b.reg(offSet + 4); got != 1<<8 {
		t.Errorf("set1 = %#x, want %#x", got, 1<<8)
	}
	if got := b.reg(offFsel + 16); got != 1 {
		t.Errorf("fsel4 = %#x, want 1", got)
	}
	b.setReg(offLev+4, 1<<8)
	if p.Read() != gpio.High {
		t.Error("Read() = Low, want High")
	}
}

func TestPinErrors(t *testing.T) {
	b := openFake(t)
	for _, n := range []int{-1, NumPins} {
		if _, err := b.Pin(n); err == nil {
			t.Errorf("Pin(%d) succeeded", n)
		}
	}
	p, err := b.Pin(4)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.PWM(gpio.DutyHalf, 0); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("PWM() = %v", err)
	}
	if p.String() != "GPIO4" || p.Name() != "GPIO4" || p.Number() != 4 {
		t.Errorf("unexpected identity %s %s %d", p, p.Name(), p.Number())
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Out(gpio.High); !errors.Is(err, ErrClosed) {
		t.Errorf("Out() after Close = %v", err)
	}
	if _, err := b.Pin(4); !errors.Is(err, ErrClosed) {
		t.Errorf("Pin() after Close = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Open() succeeded on a missing file")
	}
}
