// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "fmt"

// ExceptionHandler is one entry of a Code attribute's exception
// table: the [start_pc, end_pc) range it guards, the handler_pc to
// jump to, and the catch_type_ref naming the exception class it
// catches (zero denotes a catch-all, as used by finally blocks).
//
// Grounded on the teacher's exception-table idiom for PE x64 unwind
// info (exception.go parses a RUNTIME_FUNCTION table of
// begin/end/handler triples) — a range-guarded handler table is the
// same shape in both formats, just keyed by a class reference instead
// of an unwind-info RVA.
type ExceptionHandler struct {
	StartPC      uint16
	EndPC        uint16
	HandlerPC    uint16
	CatchTypeRef uint16

	cp *ConstantPool
}

func decodeExceptionTable(u *unpacker, cp *ConstantPool) ([]ExceptionHandler, error) {
	n, err := u.count()
	if err != nil {
		return nil, fmt.Errorf("exception table count: %w", err)
	}

	handlers := make([]ExceptionHandler, n)
	for i := range handlers {
		startPC, err := u.u16()
		if err != nil {
			return nil, err
		}
		endPC, err := u.u16()
		if err != nil {
			return nil, err
		}
		handlerPC, err := u.u16()
		if err != nil {
			return nil, err
		}
		catchType, err := u.u16()
		if err != nil {
			return nil, err
		}
		handlers[i] = ExceptionHandler{
			StartPC:      startPC,
			EndPC:        endPC,
			HandlerPC:    handlerPC,
			CatchTypeRef: catchType,
			cp:           cp,
		}
	}
	return handlers, nil
}

// CatchType dereferences CatchTypeRef to its class name. ok is false
// when CatchTypeRef is zero, meaning this handler is a catch-all.
func (e ExceptionHandler) CatchType() (name string, ok bool, err error) {
	if e.CatchTypeRef == 0 {
		return "", false, nil
	}
	if e.cp == nil {
		return "", false, ErrNoPool
	}
	name, err = e.cp.derefClassName(e.CatchTypeRef)
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// PrettyCatchType renders the handler's catch type as "Class Foo" or
// "any" for a catch-all.
func (e ExceptionHandler) PrettyCatchType() (string, error) {
	name, ok, err := e.CatchType()
	if err != nil {
		return "", err
	}
	if !ok {
		return "any", nil
	}
	return "Class " + name, nil
}

// Equal reports whether e and other are structurally identical:
// same start/end/handler range, and the same catch type once
// dereferenced to a class name. Pool slot identity is not considered,
// so two handlers from different (but semantically equal) pools can
// compare equal.
func (e ExceptionHandler) Equal(other ExceptionHandler) (bool, error) {
	if e.StartPC != other.StartPC || e.EndPC != other.EndPC || e.HandlerPC != other.HandlerPC {
		return false, nil
	}
	an, aok, err := e.CatchType()
	if err != nil {
		return false, err
	}
	bn, bok, err := other.CatchType()
	if err != nil {
		return false, err
	}
	return aok == bok && an == bn, nil
}

// LineNumberEntry associates a bytecode offset with a source line.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// LocalVariableEntry is one row of a LocalVariableTable or
// LocalVariableTypeTable attribute: the [start_pc, start_pc+length)
// range the local is live over, its name and descriptor (or
// signature) index, and its local-variable slot index.
type LocalVariableEntry struct {
	StartPC              uint16
	Length               uint16
	NameIndex            uint16
	DescriptorOrSigIndex uint16
	Index                uint16
}

// CodeAttribute is the decoded form of a method's "Code" attribute:
// the bytecode's stack/locals budget, the raw bytecode bytes
// (disassembly is delegated, never performed here), the exception
// handler table, and the attribute table nested within Code (holding
// e.g. LineNumberTable, LocalVariableTable).
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionHandler
	Attributes     AttributeTable

	cp *ConstantPool
}

// decodeCode parses a method's "Code" attribute payload. A fresh
// unpacker is built over just this payload so a short read can never
// bleed into whatever follows the Code attribute in the class file.
func decodeCode(payload []byte, cp *ConstantPool) (*CodeAttribute, error) {
	u := newUnpacker(payload)

	maxStack, err := u.u16()
	if err != nil {
		return nil, fmt.Errorf("code max_stack: %w", err)
	}
	maxLocals, err := u.u16()
	if err != nil {
		return nil, fmt.Errorf("code max_locals: %w", err)
	}
	codeLen, err := u.u32()
	if err != nil {
		return nil, fmt.Errorf("code length: %w", err)
	}
	code, err := u.read(int(codeLen))
	if err != nil {
		return nil, fmt.Errorf("code bytes: %w", err)
	}
	codeCopy := make([]byte, len(code))
	copy(codeCopy, code)

	handlers, err := decodeExceptionTable(u, cp)
	if err != nil {
		return nil, err
	}

	var attrs AttributeTable
	if err := attrs.unpack(u, cp); err != nil {
		return nil, fmt.Errorf("code attributes: %w", err)
	}

	return &CodeAttribute{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           codeCopy,
		ExceptionTable: handlers,
		Attributes:     attrs,
		cp:             cp,
	}, nil
}

// GetLineNumberTable decodes the nested LineNumberTable attribute, if
// present, as (code offset, source line) pairs in file order.
func (c *CodeAttribute) GetLineNumberTable() ([]LineNumberEntry, error) {
	payload, ok := c.Attributes.Get("LineNumberTable")
	if !ok {
		return nil, nil
	}
	u := newUnpacker(payload)
	n, err := u.count()
	if err != nil {
		return nil, err
	}
	out := make([]LineNumberEntry, n)
	for i := range out {
		startPC, err := u.u16()
		if err != nil {
			return nil, err
		}
		line, err := u.u16()
		if err != nil {
			return nil, err
		}
		out[i] = LineNumberEntry{StartPC: startPC, LineNumber: line}
	}
	return out, nil
}

// GetRelativeLineNumberTable is GetLineNumberTable with every line
// number expressed relative to the first entry's line, so line 0 is
// always the method's first executable line.
func (c *CodeAttribute) GetRelativeLineNumberTable() ([]LineNumberEntry, error) {
	lnt, err := c.GetLineNumberTable()
	if err != nil || len(lnt) == 0 {
		return lnt, err
	}
	base := lnt[0].LineNumber
	out := make([]LineNumberEntry, len(lnt))
	for i, e := range lnt {
		out[i] = LineNumberEntry{StartPC: e.StartPC, LineNumber: e.LineNumber - base}
	}
	return out, nil
}

// GetLineForOffset returns the source line associated with the
// largest LineNumberTable start_pc <= pc (an exact match wins ties),
// or -1 if the table is empty or pc precedes every entry.
func (c *CodeAttribute) GetLineForOffset(pc uint16) int {
	lnt, err := c.GetLineNumberTable()
	if err != nil || len(lnt) == 0 {
		return -1
	}
	line, bestStart := -1, -1
	for _, e := range lnt {
		if int(e.StartPC) <= int(pc) && int(e.StartPC) > bestStart {
			bestStart = int(e.StartPC)
			line = int(e.LineNumber)
		}
	}
	return line
}

func decodeLocalVariableEntries(payload []byte) ([]LocalVariableEntry, error) {
	u := newUnpacker(payload)
	n, err := u.count()
	if err != nil {
		return nil, err
	}
	out := make([]LocalVariableEntry, n)
	for i := range out {
		startPC, err := u.u16()
		if err != nil {
			return nil, err
		}
		length, err := u.u16()
		if err != nil {
			return nil, err
		}
		nameIdx, err := u.u16()
		if err != nil {
			return nil, err
		}
		descIdx, err := u.u16()
		if err != nil {
			return nil, err
		}
		index, err := u.u16()
		if err != nil {
			return nil, err
		}
		out[i] = LocalVariableEntry{
			StartPC:              startPC,
			Length:               length,
			NameIndex:            nameIdx,
			DescriptorOrSigIndex: descIdx,
			Index:                index,
		}
	}
	return out, nil
}

// GetLocalVariableTable decodes the nested LocalVariableTable
// attribute, if present.
func (c *CodeAttribute) GetLocalVariableTable() ([]LocalVariableEntry, error) {
	payload, ok := c.Attributes.Get("LocalVariableTable")
	if !ok {
		return nil, nil
	}
	return decodeLocalVariableEntries(payload)
}

// GetLocalVariableTypeTable decodes the nested
// LocalVariableTypeTable attribute, if present. Its DescriptorOrSigIndex
// points at a Signature (generic type) rather than a plain descriptor.
func (c *CodeAttribute) GetLocalVariableTypeTable() ([]LocalVariableEntry, error) {
	payload, ok := c.Attributes.Get("LocalVariableTypeTable")
	if !ok {
		return nil, nil
	}
	return decodeLocalVariableEntries(payload)
}

// Disassembler decodes raw bytecode into a sequence of instructions.
// jclass never implements one itself (spec.md §6): a caller that wants
// instruction-level detail supplies a Disassembler, typically backed
// by a standalone opcode table package.
type Disassembler func(code []byte) ([]Instruction, error)

// Instruction is one decoded bytecode instruction, as produced by an
// external Disassembler.
type Instruction struct {
	Offset   int
	Mnemonic string
	Args     []byte
}

// Disassemble forwards Code's raw bytecode bytes to dis. jclass does
// not ship a Disassembler implementation; the caller supplies one.
func (c *CodeAttribute) Disassemble(dis Disassembler) ([]Instruction, error) {
	return dis(c.Code)
}
