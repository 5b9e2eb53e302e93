// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen1d

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

func TestTxLatchesFullFrames(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 2, W: &out})
	c, err := d.Connect(2*physic.MegaHertz, spi.Mode0, 8)
	require.NoError(t, err)
	assert.Equal(t, 2*physic.MegaHertz, d.Freq())

	require.NoError(t, c.Tx([]byte{0xff, 0, 0, 0}, nil))
	assert.Empty(t, out.String(), "partial frame must not be displayed")
	assert.Equal(t, make([]byte, 6), d.Frame())

	require.NoError(t, c.Tx([]byte{0xff, 0}, nil))
	assert.Equal(t, []byte{0xff, 0, 0, 0, 0xff, 0}, d.Frame())
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "\r\033[0m"))
	assert.Contains(t, s, ansi256.Default.Block(color.NRGBA{0xff, 0, 0, 255}))
	assert.Contains(t, s, ansi256.Default.Block(color.NRGBA{0, 0xff, 0, 255}))
}

func TestTxSpansFrames(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 1, W: &out})
	require.NoError(t, d.Tx([]byte{1, 2, 3, 4, 5}, nil))
	assert.Equal(t, []byte{1, 2, 3}, d.Frame())
	require.NoError(t, d.TxPackets([]spi.Packet{{W: []byte{6}}}))
	assert.Equal(t, []byte{4, 5, 6}, d.Frame())
}

func TestTxRejectsRead(t *testing.T) {
	d := New(&Opts{X: 1, W: &bytes.Buffer{}})
	assert.Error(t, d.Tx([]byte{1}, make([]byte, 1)))
}

func TestEmptyStrand(t *testing.T) {
	d := New(&Opts{W: &bytes.Buffer{}})
	assert.NoError(t, d.Tx([]byte{1, 2, 3}, nil))
	assert.Empty(t, d.Frame())
}

func TestConnectModes(t *testing.T) {
	d := New(&Opts{X: 1, W: &bytes.Buffer{}})
	_, err := d.Connect(physic.MegaHertz, spi.Mode0, 16)
	assert.Error(t, err)
	_, err = d.Connect(physic.MegaHertz, spi.Mode3, 8)
	assert.Error(t, err)
	_, err = d.Connect(physic.MegaHertz, spi.Mode0|spi.LSBFirst, 8)
	assert.Error(t, err)
	_, err = d.Connect(physic.MegaHertz, spi.Mode0, 8)
	assert.NoError(t, err)
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 1, W: &out})
	require.NoError(t, d.Close())
	assert.Equal(t, "\n\033[0m", out.String())
	assert.Equal(t, "Screen1D", d.String())
}
