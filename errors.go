// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"errors"
	"fmt"
)

// Errors returned by the decoder. The decoder never recovers from any
// of these: a class file either parses in full, or parsing stops and
// one of these (possibly wrapped with extra context) is returned.
var (
	// ErrNotAClassFile is returned when the magic number does not
	// equal 0xCAFEBABE.
	ErrNotAClassFile = errors.New("jclass: not a class file")

	// ErrNoPool is returned when a dereference is attempted on a
	// structure that has no attached ConstantPool.
	ErrNoPool = errors.New("jclass: no constant pool attached")

	// ErrUnimplemented is returned when a constant-pool tag or a
	// descriptor character is not recognized by this decoder. It
	// signals a class file using features past the version this
	// parser understands.
	ErrUnimplemented = errors.New("jclass: unimplemented class file feature")

	// ErrInvalidReference is returned when a constant-pool index is
	// zero where a nonzero index was required, or the index falls
	// outside the bounds of the pool.
	ErrInvalidReference = errors.New("jclass: invalid constant pool reference")

	// ErrTooSmall is returned when the input is shorter than 10
	// bytes (magic + version + constant pool count). Inputs that are
	// truncated further along fail with an *UnpackError instead.
	ErrTooSmall = errors.New("jclass: input too small to be a class file")
)

// UnpackError is returned by the unpacker when the underlying stream
// holds fewer bytes than a requested shape. It carries enough context
// for a caller to report exactly where decoding failed.
type UnpackError struct {
	// Format describes what was being read. The unpacker sets it to
	// "bytes" for every short read; which structure was being decoded
	// is added by the errors that wrap this one.
	Format string

	// Wanted is the number of bytes the shape required.
	Wanted int

	// Present is the number of bytes actually available.
	Present int
}

func (e *UnpackError) Error() string {
	return fmt.Sprintf("jclass: unpack %s requires %d bytes, only %d present",
		e.Format, e.Wanted, e.Present)
}

// invalidRef wraps ErrInvalidReference with the index and the
// structure that was being resolved, so callers can tell which
// dereference failed.
func invalidRef(where string, index uint16) error {
	return fmt.Errorf("jclass: %s: index %d: %w", where, index, ErrInvalidReference)
}

func unimplemented(where string, what interface{}) error {
	return fmt.Errorf("jclass: %s: %v: %w", where, what, ErrUnimplemented)
}
