// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// XRecord - X11 屏幕录制工具

package progress

import (
	"fmt"
	"io"
	"time"
)

// Printer renders encode progress on a single terminal line.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Render draws one sample as a percentage of total, redrawing in
// place. done renders as complete and ends the line.
func (p *Printer) Render(total, elapsed time.Duration, done bool) {
	if total <= 0 {
		return
	}
	if done || elapsed > total {
		elapsed = total
	}

	fmt.Fprintf(p.out, "\r\x1b[Kencoding: %5.1f%%", elapsed.Seconds()/total.Seconds()*100)
	if done {
		fmt.Fprintln(p.out)
	}
}
