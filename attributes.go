// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// AttributeTable is a name -> raw payload mapping, as found in class,
// member (field/method), and Code structures. Attribute payloads are
// opaque length-prefixed blobs; interpretation depends entirely on the
// attribute's name and which structure contains it, so this type
// never decodes a payload itself — accessors on ClassFile, Member and
// CodeAttribute do that lazily, on request.
//
// Grounded on the teacher's Section type (section.go): a named region
// of raw bytes carried alongside the structure that owns it, looked up
// by name rather than eagerly decoded into a dedicated field. Where
// the teacher indexes sections by a fixed small set of well-known
// names (".text", ".rdata", ...), an AttributeTable's names come from
// the constant pool and may be anything, including names this decoder
// has never heard of — those are preserved verbatim and simply never
// queried.
type AttributeTable map[string][]byte

// unpack reads a u16 count, then that many (name_index u16, length
// u32, payload) records, storing payload under its dereferenced name.
// Duplicate names keep the last-written payload, matching the
// documented behavior of the reference implementation.
func (at *AttributeTable) unpack(u *unpacker, cp *ConstantPool) error {
	n, err := u.count()
	if err != nil {
		return err
	}

	table := make(AttributeTable, n)
	for i := 0; i < int(n); i++ {
		nameIdx, err := u.u16()
		if err != nil {
			return err
		}
		length, err := u.u32()
		if err != nil {
			return err
		}
		payload, err := u.read(int(length))
		if err != nil {
			return err
		}
		name, err := cp.derefUtf8(nameIdx)
		if err != nil {
			return err
		}
		// Copy the payload out: it aliases the shared unpacker buffer
		// and attribute tables are expected to outlive any one parse
		// pass over their containing byte range.
		owned := make([]byte, len(payload))
		copy(owned, payload)
		table[name] = owned
	}

	*at = table
	return nil
}

// Get returns the payload for name and whether it was present.
func (at AttributeTable) Get(name string) ([]byte, bool) {
	b, ok := at[name]
	return b, ok
}
