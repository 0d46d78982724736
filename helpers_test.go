// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"bytes"
	"encoding/binary"
)

// classBuilder assembles a well-formed class file byte by byte, for
// tests that need exact control over the wire format — there is no
// compiled .class fixture to ship alongside this decoder, so tests
// build their own minimal ones.
type classBuilder struct {
	major, minor uint16
	accessFlags  uint16
	thisClass    uint16
	superClass   uint16
	interfaces   []uint16
	pool         [][]byte // raw tag+payload entries, in index order
	nextIndex    uint16   // next constant-pool index addConst will assign
	fields       []byte
	fieldCount   uint16
	methods      []byte
	methodCount  uint16
	attributes   []byte
}

func newClassBuilder() *classBuilder {
	return &classBuilder{major: 52, minor: 0, nextIndex: 1}
}

// addConst appends a raw constant-pool entry (tag byte + payload) and
// returns the index it was assigned. A Long or Double entry consumes
// two index slots, mirroring the dual-slot rule ConstantPool.unpack
// implements, so that a constant added immediately afterward lands on
// the same index a real class file would give it.
func (b *classBuilder) addConst(raw []byte) uint16 {
	idx := b.nextIndex
	b.pool = append(b.pool, raw)
	b.nextIndex++
	if len(raw) > 0 {
		switch ConstTag(raw[0]) {
		case TagLong, TagDouble:
			b.nextIndex++
		}
	}
	return idx
}

func cpUtf8(s string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagUtf8))
	binary.Write(&buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
	return buf.Bytes()
}

func cpClass(nameIdx uint16) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagClass))
	binary.Write(&buf, binary.BigEndian, nameIdx)
	return buf.Bytes()
}

func cpRefPair(tag ConstTag, a, b uint16) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(tag))
	binary.Write(&buf, binary.BigEndian, a)
	binary.Write(&buf, binary.BigEndian, b)
	return buf.Bytes()
}

func cpInteger(v int32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagInteger))
	binary.Write(&buf, binary.BigEndian, v)
	return buf.Bytes()
}

func cpLong(v int64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(TagLong))
	binary.Write(&buf, binary.BigEndian, v)
	return buf.Bytes()
}

// addClass interns a Utf8 name and the Class entry naming it,
// returning the Class entry's index.
func (b *classBuilder) addClass(name string) uint16 {
	n := b.addConst(cpUtf8(name))
	return b.addConst(cpClass(n))
}

// addMember appends one field_info/method_info record (access_flags,
// name_index, descriptor_index, 0 attributes) to fields or methods.
func addMember(dst []byte, flags, nameIdx, descIdx uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, flags)
	binary.Write(&buf, binary.BigEndian, nameIdx)
	binary.Write(&buf, binary.BigEndian, descIdx)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // attributes_count
	return append(dst, buf.Bytes()...)
}

func (b *classBuilder) addField(flags uint16, name, descriptor string) {
	n := b.addConst(cpUtf8(name))
	d := b.addConst(cpUtf8(descriptor))
	b.fields = addMember(b.fields, flags, n, d)
	b.fieldCount++
}

func (b *classBuilder) addMethod(flags uint16, name, descriptor string) {
	n := b.addConst(cpUtf8(name))
	d := b.addConst(cpUtf8(descriptor))
	b.methods = addMember(b.methods, flags, n, d)
	b.methodCount++
}

func (b *classBuilder) bytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, ClassMagic)
	binary.Write(&buf, binary.BigEndian, b.minor)
	binary.Write(&buf, binary.BigEndian, b.major)

	// constant_pool_count is one past the last index, which counts the
	// second slot of every Long/Double entry.
	binary.Write(&buf, binary.BigEndian, b.nextIndex)
	for _, e := range b.pool {
		buf.Write(e)
	}

	binary.Write(&buf, binary.BigEndian, b.accessFlags)
	binary.Write(&buf, binary.BigEndian, b.thisClass)
	binary.Write(&buf, binary.BigEndian, b.superClass)

	binary.Write(&buf, binary.BigEndian, uint16(len(b.interfaces)))
	for _, i := range b.interfaces {
		binary.Write(&buf, binary.BigEndian, i)
	}

	binary.Write(&buf, binary.BigEndian, b.fieldCount)
	buf.Write(b.fields)

	binary.Write(&buf, binary.BigEndian, b.methodCount)
	buf.Write(b.methods)

	binary.Write(&buf, binary.BigEndian, uint16(0)) // class attributes_count
	buf.Write(b.attributes)

	return buf.Bytes()
}
