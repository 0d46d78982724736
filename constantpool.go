// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// ConstTag identifies the variant of a constant-pool entry.
//
// Grounded on the teacher's typed-dispatch-by-code pattern (debug.go
// switches on a DebugType code to decide how to decode each directory
// entry); here the dispatch key is the 1-byte constant-pool tag from
// original_source's CONST_* table.
type ConstTag uint8

// Constant-pool tags, as laid out in original_source/src/__init__.py.
const (
	TagUtf8               ConstTag = 1
	TagInteger            ConstTag = 3
	TagFloat              ConstTag = 4
	TagLong               ConstTag = 5
	TagDouble             ConstTag = 6
	TagClass              ConstTag = 7
	TagString             ConstTag = 8
	TagFieldref           ConstTag = 9
	TagMethodref          ConstTag = 10
	TagInterfaceMethodref ConstTag = 11
	TagNameAndType        ConstTag = 12
	TagModuleIdInfo       ConstTag = 13
)

// RefPair is the raw (index, index) payload shared by Fieldref,
// Methodref, InterfaceMethodref, NameAndType and ModuleIdInfo entries.
type RefPair struct {
	First, Second uint16
}

// constEntry is one slot of the pool: either empty (the dummy slot 0,
// and the slot immediately following a Long/Double) or a tagged value.
// Payload holds, depending on Tag: string (Utf8), int32 (Integer),
// float32 (Float), int64 (Long), float64 (Double), uint16 (Class,
// String), or RefPair (Fieldref, Methodref, InterfaceMethodref,
// NameAndType, ModuleIdInfo).
type constEntry struct {
	present bool
	tag     ConstTag
	payload interface{}
}

// ConstantPool is the decoded, 1-indexed constant pool of a class
// file. Index 0 and the slot following every Long/Double entry are
// empty sentinels.
type ConstantPool struct {
	entries []constEntry
}

// unpack decodes the pool from u: a u16 count, a sentinel at index 0,
// then (count-1) tagged entries. A Long or Double entry consumes one
// index's worth of data but occupies two index slots — the slot
// following it is left empty, exactly as spec.md §4.3 requires.
func (cp *ConstantPool) unpack(u *unpacker) error {
	count, err := u.u16()
	if err != nil {
		return fmt.Errorf("constant pool count: %w", err)
	}

	entries := make([]constEntry, count)
	// entries[0] stays the empty sentinel.

	wideSlotFollows := false
	for i := 1; i < int(count); i++ {
		if wideSlotFollows {
			wideSlotFollows = false
			continue
		}

		tag, payload, err := unpackConstItem(u)
		if err != nil {
			return fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		entries[i] = constEntry{present: true, tag: tag, payload: payload}

		if tag == TagLong || tag == TagDouble {
			wideSlotFollows = true
		}
	}

	cp.entries = entries
	return nil
}

func unpackConstItem(u *unpacker) (ConstTag, interface{}, error) {
	tagByte, err := u.u8()
	if err != nil {
		return 0, nil, err
	}
	tag := ConstTag(tagByte)

	switch tag {
	case TagUtf8:
		n, err := u.u16()
		if err != nil {
			return 0, nil, err
		}
		raw, err := u.read(int(n))
		if err != nil {
			return 0, nil, err
		}
		s, err := decodeModifiedUTF8(raw)
		if err != nil {
			return 0, nil, err
		}
		return tag, s, nil

	case TagInteger:
		v, err := u.i32()
		return tag, v, err

	case TagFloat:
		v, err := u.f32()
		return tag, v, err

	case TagLong:
		v, err := u.i64()
		return tag, v, err

	case TagDouble:
		v, err := u.f64()
		return tag, v, err

	case TagClass, TagString:
		v, err := u.u16()
		return tag, v, err

	case TagFieldref, TagMethodref, TagInterfaceMethodref,
		TagNameAndType, TagModuleIdInfo:
		a, err := u.u16()
		if err != nil {
			return 0, nil, err
		}
		b, err := u.u16()
		if err != nil {
			return 0, nil, err
		}
		return tag, RefPair{First: a, Second: b}, nil

	default:
		return 0, nil, unimplemented("constant pool tag", tagByte)
	}
}

// decodeModifiedUTF8 decodes b as Java's modified UTF-8: strict UTF-8
// is tried first; on failure, the encoded-null sequence 0xC0 0x80 is
// substituted with a literal 0x00 and strict decoding is retried. If
// that still fails the data is not valid modified UTF-8.
func decodeModifiedUTF8(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	fixed := bytes.ReplaceAll(b, []byte{0xC0, 0x80}, []byte{0x00})
	if utf8.Valid(fixed) {
		return string(fixed), nil
	}
	return "", fmt.Errorf("jclass: invalid modified utf-8 data")
}

// GetConst returns the raw (tag, payload) pair stored at index i.
func (cp *ConstantPool) GetConst(i uint16) (ConstTag, interface{}, error) {
	if int(i) >= len(cp.entries) || !cp.entries[i].present {
		return 0, nil, invalidRef("GetConst", i)
	}
	e := cp.entries[i]
	return e.tag, e.payload, nil
}

// DerefConst resolves indirections: scalar entries (Utf8, Integer,
// Float, Long, Double) return themselves; Class and String return the
// Utf8 string at their index; compound entries recursively dereference
// both of their component indices and return the pair as a
// []interface{} of length 2.
func (cp *ConstantPool) DerefConst(i uint16) (interface{}, error) {
	if i == 0 {
		return nil, invalidRef("DerefConst", i)
	}
	if int(i) >= len(cp.entries) || !cp.entries[i].present {
		return nil, invalidRef("DerefConst", i)
	}

	e := cp.entries[i]
	switch e.tag {
	case TagUtf8, TagInteger, TagFloat, TagLong, TagDouble:
		return e.payload, nil

	case TagClass, TagString:
		return cp.DerefConst(e.payload.(uint16))

	case TagFieldref, TagMethodref, TagInterfaceMethodref,
		TagNameAndType, TagModuleIdInfo:
		pair := e.payload.(RefPair)
		a, err := cp.DerefConst(pair.First)
		if err != nil {
			return nil, err
		}
		b, err := cp.DerefConst(pair.Second)
		if err != nil {
			return nil, err
		}
		return []interface{}{a, b}, nil

	default:
		return nil, unimplemented("DerefConst", e.tag)
	}
}

// derefUtf8 dereferences index i and requires the result to be a
// string, as is the case whenever a name_index, descriptor_index or
// signature_index is resolved.
func (cp *ConstantPool) derefUtf8(i uint16) (string, error) {
	v, err := cp.DerefConst(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidRef("derefUtf8", i)
	}
	return s, nil
}

// rawClassName dereferences a Class constant-pool index to its raw
// internal name (e.g. "java/lang/String", or "[Ljava/lang/String;"
// for an array class), without the slash-to-dot prettification
// derefClassName applies. Callers that need to peel an array type
// down to its element class (Requires) need this undotted form.
func (cp *ConstantPool) rawClassName(i uint16) (string, error) {
	tag, payload, err := cp.GetConst(i)
	if err != nil {
		return "", err
	}
	if tag != TagClass {
		return "", invalidRef("derefClassName", i)
	}
	return cp.derefUtf8(payload.(uint16))
}

// derefClassName dereferences a Class constant-pool index to its
// pretty (dotted) class name.
func (cp *ConstantPool) derefClassName(i uint16) (string, error) {
	name, err := cp.rawClassName(i)
	if err != nil {
		return "", err
	}
	return prettyClassName(name), nil
}

// PrettyDerefConst renders the entry at index i for human display:
// String -> its literal, Class -> dotted class name, Fieldref ->
// "owner.name:type", Methodref/InterfaceMethodref ->
// "owner.name(args):return", NameAndType -> "name:type", ModuleIdInfo
// -> "name@version".
func (cp *ConstantPool) PrettyDerefConst(i uint16) (string, error) {
	tag, payload, err := cp.GetConst(i)
	if err != nil {
		return "", err
	}

	switch tag {
	case TagString:
		return cp.derefUtf8(payload.(uint16))

	case TagClass:
		return cp.derefClassName(i)

	case TagFieldref:
		pair := payload.(RefPair)
		owner, err := cp.derefClassName(pair.First)
		if err != nil {
			return "", err
		}
		name, desc, err := cp.derefNameAndType(pair.Second)
		if err != nil {
			return "", err
		}
		pt, err := prettyType(desc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s:%s", owner, name, pt), nil

	case TagMethodref, TagInterfaceMethodref:
		pair := payload.(RefPair)
		owner, err := cp.derefClassName(pair.First)
		if err != nil {
			return "", err
		}
		name, desc, err := cp.derefNameAndType(pair.Second)
		if err != nil {
			return "", err
		}
		args, ret, err := methodDescriptorParts(desc)
		if err != nil {
			return "", err
		}
		prettyArgs, err := prettyTypeSeq(args)
		if err != nil {
			return "", err
		}
		prettyRet, err := prettyType(ret)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s(%s):%s", owner, name,
			joinComma(prettyArgs), prettyRet), nil

	case TagNameAndType:
		pair := payload.(RefPair)
		n, err := cp.derefUtf8(pair.First)
		if err != nil {
			return "", err
		}
		d, err := cp.derefUtf8(pair.Second)
		if err != nil {
			return "", err
		}
		pretty, err := prettyTypeSeqOrType(d)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s:%s", n, pretty), nil

	case TagModuleIdInfo:
		pair := payload.(RefPair)
		name, err := cp.derefUtf8(pair.First)
		if err != nil {
			return "", err
		}
		version, err := cp.derefUtf8(pair.Second)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s@%s", name, version), nil

	default:
		return "", unimplemented("PrettyDerefConst", tag)
	}
}

// derefNameAndType dereferences a NameAndType index to its (name,
// descriptor) pair of Utf8 strings.
func (cp *ConstantPool) derefNameAndType(i uint16) (name, descriptor string, err error) {
	tag, payload, err := cp.GetConst(i)
	if err != nil {
		return "", "", err
	}
	if tag != TagNameAndType {
		return "", "", invalidRef("derefNameAndType", i)
	}
	pair := payload.(RefPair)
	name, err = cp.derefUtf8(pair.First)
	if err != nil {
		return "", "", err
	}
	descriptor, err = cp.derefUtf8(pair.Second)
	if err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// prettyTypeSeqOrType renders a NameAndType descriptor that may be
// either a plain field type or a method descriptor "(args)ret".
func prettyTypeSeqOrType(descriptor string) (string, error) {
	if len(descriptor) > 0 && descriptor[0] == '(' {
		args, ret, err := methodDescriptorParts(descriptor)
		if err != nil {
			return "", err
		}
		prettyArgs, err := prettyTypeSeq(args)
		if err != nil {
			return "", err
		}
		prettyRet, err := prettyType(ret)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s)%s", joinComma(prettyArgs), prettyRet), nil
	}
	return prettyType(descriptor)
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

// Constants iterates (index, tag, dereferenced value) over every
// populated slot of the pool, skipping the sentinel at 0 and the
// dummy slot after every Long/Double — the raw-dump view used by
// cmd/jclassdump's --constantpool mode.
func (cp *ConstantPool) Constants() []PoolConstant {
	out := make([]PoolConstant, 0, len(cp.entries))
	for i := 1; i < len(cp.entries); i++ {
		if !cp.entries[i].present {
			continue
		}
		v, err := cp.DerefConst(uint16(i))
		out = append(out, PoolConstant{
			Index: uint16(i),
			Tag:   cp.entries[i].tag,
			Value: v,
			Err:   err,
		})
	}
	return out
}

// PoolConstant is one row of ConstantPool.Constants(): the index, its
// tag, and its dereferenced value (or the error DerefConst returned).
type PoolConstant struct {
	Index uint16
	Tag   ConstTag
	Value interface{}
	Err   error
}
