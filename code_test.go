// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildCodePayload assembles a Code attribute payload: max_stack,
// max_locals, code, an empty exception table, and an optional
// LineNumberTable attribute.
func buildCodePayload(t *testing.T, cp *ConstantPool, lineNumberAttrIdx uint16, lnt []LineNumberEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(2)) // max_stack
	binary.Write(&buf, binary.BigEndian, uint16(1)) // max_locals

	code := []byte{0xB1} // return
	binary.Write(&buf, binary.BigEndian, uint32(len(code)))
	buf.Write(code)

	binary.Write(&buf, binary.BigEndian, uint16(0)) // exception_table_length

	if lnt == nil {
		binary.Write(&buf, binary.BigEndian, uint16(0)) // attributes_count
		return buf.Bytes()
	}

	var lntPayload bytes.Buffer
	binary.Write(&lntPayload, binary.BigEndian, uint16(len(lnt)))
	for _, e := range lnt {
		binary.Write(&lntPayload, binary.BigEndian, e.StartPC)
		binary.Write(&lntPayload, binary.BigEndian, e.LineNumber)
	}

	binary.Write(&buf, binary.BigEndian, uint16(1)) // attributes_count
	binary.Write(&buf, binary.BigEndian, lineNumberAttrIdx)
	binary.Write(&buf, binary.BigEndian, uint32(lntPayload.Len()))
	buf.Write(lntPayload.Bytes())

	return buf.Bytes()
}

func TestGetLineForOffset(t *testing.T) {
	var cp ConstantPool
	cp.entries = make([]constEntry, 2)
	cp.entries[1] = constEntry{present: true, tag: TagUtf8, payload: "LineNumberTable"}

	lnt := []LineNumberEntry{{StartPC: 0, LineNumber: 10}, {StartPC: 4, LineNumber: 11}, {StartPC: 9, LineNumber: 12}}
	payload := buildCodePayload(t, &cp, 1, lnt)

	code, err := decodeCode(payload, &cp)
	if err != nil {
		t.Fatalf("decodeCode failed: %v", err)
	}

	tests := []struct {
		pc   uint16
		want int
	}{
		{0, 10}, {3, 10}, {4, 11}, {8, 11}, {9, 12}, {100, 12},
	}
	for _, tt := range tests {
		if got := code.GetLineForOffset(tt.pc); got != tt.want {
			t.Errorf("GetLineForOffset(%d) = %d, want %d", tt.pc, got, tt.want)
		}
	}
}

func TestGetLineForOffsetEmptyTable(t *testing.T) {
	var cp ConstantPool
	payload := buildCodePayload(t, &cp, 0, nil)
	code, err := decodeCode(payload, &cp)
	if err != nil {
		t.Fatalf("decodeCode failed: %v", err)
	}
	if got := code.GetLineForOffset(5); got != -1 {
		t.Errorf("GetLineForOffset on empty table = %d, want -1", got)
	}
}

func TestExceptionHandlerEqual(t *testing.T) {
	var poolA ConstantPool
	poolA.entries = make([]constEntry, 3)
	poolA.entries[1] = constEntry{present: true, tag: TagUtf8, payload: "java/lang/Exception"}
	poolA.entries[2] = constEntry{present: true, tag: TagClass, payload: uint16(1)}

	var poolB ConstantPool
	poolB.entries = make([]constEntry, 3)
	poolB.entries[1] = constEntry{present: true, tag: TagUtf8, payload: "java/lang/Exception"}
	poolB.entries[2] = constEntry{present: true, tag: TagClass, payload: uint16(1)}

	a := ExceptionHandler{StartPC: 0, EndPC: 5, HandlerPC: 8, CatchTypeRef: 2, cp: &poolA}
	b := ExceptionHandler{StartPC: 0, EndPC: 5, HandlerPC: 8, CatchTypeRef: 2, cp: &poolB}

	eq, err := a.Equal(b)
	if err != nil {
		t.Fatalf("Equal failed: %v", err)
	}
	if !eq {
		t.Error("handlers from distinct but structurally-identical pools should be Equal")
	}

	c := ExceptionHandler{StartPC: 0, EndPC: 5, HandlerPC: 9, CatchTypeRef: 2, cp: &poolB}
	eq, err = a.Equal(c)
	if err != nil {
		t.Fatalf("Equal failed: %v", err)
	}
	if eq {
		t.Error("handlers with different HandlerPC should not be Equal")
	}
}

func TestExceptionHandlerCatchAll(t *testing.T) {
	e := ExceptionHandler{StartPC: 0, EndPC: 5, HandlerPC: 8, CatchTypeRef: 0}
	name, ok, err := e.CatchType()
	if err != nil || ok || name != "" {
		t.Fatalf("CatchType() on catch-all = %q, %v, %v; want \"\", false, nil", name, ok, err)
	}
	pretty, err := e.PrettyCatchType()
	if err != nil || pretty != "any" {
		t.Fatalf("PrettyCatchType() = %q, %v; want \"any\", nil", pretty, err)
	}
}
