// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package readpos wraps an io.Reader with a running byte offset, so callers
// can attach a position to diagnostics produced while decoding a stream.
package readpos

import "io"

// ReadPos tracks the current byte offset into R as it is read.
type ReadPos struct {
	R      io.Reader
	CurPos int64
}

// Read implements io.Reader, advancing CurPos by the number of bytes
// successfully read.
func (r *ReadPos) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	r.CurPos += int64(n)
	return n, err
}
