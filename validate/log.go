// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import "github.com/sirupsen/logrus"

// PrintDebugInfo gates the per-opcode trace calls. The trace is emitted
// only once the logger's level is also Debug; SetDebug sets both together.
// Off (discarded) by default.
var PrintDebugInfo = false

var logger = newLogger()

func newLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// SetDebug raises or lowers the validator's trace verbosity.
func SetDebug(on bool) {
	PrintDebugInfo = on
	lvl := logrus.ErrorLevel
	if on {
		lvl = logrus.DebugLevel
	}
	if l, ok := logger.(*logrus.Logger); ok {
		l.SetLevel(lvl)
	}
}

func traceOp(fn int, pc int, name string, reachable bool) {
	logger.WithFields(logrus.Fields{
		"function":  fn,
		"pc":        pc,
		"op":        name,
		"reachable": reachable,
	}).Debug("validating opcode")
}
