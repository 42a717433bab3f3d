// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qcqp

import (
	"fmt"
	"io"
)

// LogLevel controls the frequency and type of logger output.
type LogLevel int

const (
	// LogNoop no output is generated.
	LogNoop LogLevel = iota
	// LogIter print λ and the constraint residual every Newton iteration.
	LogIter
)

// Logger traces the Newton iteration of SolveN. The zero value and a
// nil *Logger are both silent. The writer must be provided by the
// caller; there is no default output.
type Logger struct {
	Level LogLevel
	Msg   io.Writer
}

func (l *Logger) log(level LogLevel, format string, a ...any) {
	if l == nil || l.Msg == nil || l.Level < level {
		return
	}
	_, _ = fmt.Fprintf(l.Msg, format, a...)
}
