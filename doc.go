// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ledstrip is a container for LED strand drivers and the tools to
// run them.
//
// The strand driver is ws2803. screen1d emulates a strand on the terminal.
package ledstrip
