// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ws2803 drives strands of WorldSemi WS2803 18 channel constant
// current LED drivers, wired as RGB pixels.
//
// The WS2803 is a plain clocked shift register: there is no addressing and
// no acknowledgement. Bytes are shifted in MSB first on the rising clock
// edge and the whole chain latches once the clock line stays low for longer
// than 600µs.
//
// The API follows the NeoPixel calling conventions: pixels are set into an
// in-memory buffer, optionally dimmed with SetBrightness, then sent with
// Show. Frames are sent either through a hardware SPI port or by toggling
// two GPIO output pins.
//
// # Datasheet
//
// https://www.world-semi.com/DownLoadFile/123
package ws2803
