// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestUnpackerBigEndianScalars(t *testing.T) {
	u := newUnpacker([]byte{0x12, 0x34, 0x00, 0x00, 0x00, 0x01})
	got16, err := u.u16()
	if err != nil || got16 != 0x1234 {
		t.Fatalf("u16() = %#x, %v, want 0x1234, nil", got16, err)
	}
	got32, err := u.u32()
	if err != nil || got32 != 1 {
		t.Fatalf("u32() = %#x, %v, want 1, nil", got32, err)
	}
}

func TestUnpackerReadPastEndFails(t *testing.T) {
	u := newUnpacker([]byte{0x01, 0x02})
	if _, err := u.read(3); err == nil {
		t.Fatal("expected an error reading past the end of the buffer")
	}
	var ue *UnpackError
	if _, err := u.read(3); err != nil {
		var ok bool
		ue, ok = err.(*UnpackError)
		if !ok {
			t.Fatalf("err is %T, want *UnpackError", err)
		}
	}
	if ue != nil && ue.Present != 2 {
		t.Errorf("UnpackError.Present = %d, want 2", ue.Present)
	}
}

func TestUnpackerCursorAdvancesOnlyOnSuccess(t *testing.T) {
	u := newUnpacker([]byte{0xAA})
	if _, err := u.read(5); err == nil {
		t.Fatal("expected a short-read error")
	}
	if u.remaining() != 1 {
		t.Fatalf("remaining() = %d after a failed read, want 1 (cursor must not advance)", u.remaining())
	}
}

func TestUnpackerU16Array(t *testing.T) {
	u := newUnpacker([]byte{0x00, 0x02, 0x00, 0x01, 0x00, 0x02})
	arr, err := u.u16Array()
	if err != nil {
		t.Fatalf("u16Array failed: %v", err)
	}
	if len(arr) != 2 || arr[0] != 1 || arr[1] != 2 {
		t.Errorf("u16Array() = %v, want [1 2]", arr)
	}
}
