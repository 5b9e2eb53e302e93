// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen1d_test

import (
	"fmt"
	"io"
	"log"

	"github.com/GermanBionicSystems/ledstrip/screen1d"
	"github.com/GermanBionicSystems/ledstrip/ws2803"
)

func Example() {
	// Emulate a 3 pixel strand. Discard the ANSI output to keep the example
	// output stable.
	s := screen1d.New(&screen1d.Opts{X: 3, W: io.Discard})
	dev, err := ws2803.NewSPI(s, &ws2803.Opts{NumPixels: 3})
	if err != nil {
		log.Fatal(err)
	}
	dev.SetPixel(0, 0xff0000)
	dev.SetPixel(2, 0x0000ff)
	if err := dev.Show(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("% x\n", s.Frame())
	// Output: ff 00 00 00 00 00 00 00 ff
}
