// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"bytes"
	"encoding/binary"
	"math"
)

// unpacker is a cursor over a byte slice. It decodes big-endian
// fixed-width integers and length-prefixed arrays, and hands out
// sub-slices by length, advancing its position as it goes. It never
// seeks backwards: sub-parsers of attribute payloads are always given
// a fresh unpacker over just that payload's bytes, so a short read in
// one attribute can never bleed into the data that follows it.
//
// Grounded on the teacher's boundary-checked structUnpack/
// ReadBytesAtOffset pair (helper.go): the same "does the stream have
// enough left" check, turned into a cursor rather than an
// offset+size pair, since a constant pool or attribute stream is read
// strictly in order and never randomly addressed.
type unpacker struct {
	data []byte
	pos  int
}

func newUnpacker(data []byte) *unpacker {
	return &unpacker{data: data}
}

// remaining reports how many unread bytes are left.
func (u *unpacker) remaining() int {
	return len(u.data) - u.pos
}

// read returns the next n bytes and advances the cursor. The
// returned slice aliases the unpacker's backing array; callers that
// need to retain it past the unpacker's lifetime should copy it.
func (u *unpacker) read(n int) ([]byte, error) {
	if n < 0 || u.remaining() < n {
		return nil, &UnpackError{Format: "bytes", Wanted: n, Present: u.remaining()}
	}
	b := u.data[u.pos : u.pos+n]
	u.pos += n
	return b, nil
}

func (u *unpacker) u8() (uint8, error) {
	b, err := u.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (u *unpacker) u16() (uint16, error) {
	b, err := u.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (u *unpacker) u32() (uint32, error) {
	b, err := u.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (u *unpacker) i32() (int32, error) {
	v, err := u.u32()
	return int32(v), err
}

func (u *unpacker) u64() (uint64, error) {
	b, err := u.read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (u *unpacker) i64() (int64, error) {
	v, err := u.u64()
	return int64(v), err
}

func (u *unpacker) f32() (float32, error) {
	v, err := u.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (u *unpacker) f64() (float64, error) {
	v, err := u.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// count reads the u16-length prefix shared by every counted array in
// the class file format (constant pool size, interfaces, fields,
// methods, attribute tables, exception tables, ...).
func (u *unpacker) count() (uint16, error) {
	return u.u16()
}

// u16Array reads a u16 count followed by that many u16 values, used
// for the interfaces table and for Exceptions/catch-type lists.
func (u *unpacker) u16Array() ([]uint16, error) {
	n, err := u.count()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		v, err := u.u16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// readStruct decodes a fixed-layout, all-integer record (an
// ExceptionHandler entry, an InnerClassInfo entry, a LineNumberTable
// row, ...) via encoding/binary, the same way the teacher's
// structUnpack feeds a bytes.Reader into binary.Read over a
// boundary-checked window.
func (u *unpacker) readStruct(v interface{}) error {
	size := binary.Size(v)
	b, err := u.read(size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), binary.BigEndian, v)
}
