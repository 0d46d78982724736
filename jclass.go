// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Package jclass decodes JVM class files: the constant pool, access
// flags, field and method tables, code attributes and their exception
// and line-number tables, inner-class metadata, and the class's
// dependency surface (what it provides, what it requires). It decodes
// structure only — it never verifies bytecode, never resolves a class
// hierarchy, and never disassembles instructions itself, leaving that
// last step to a caller-supplied Disassembler.
package jclass

import (
	"encoding/binary"
	"io"
	"os"
)

// IsClass reports whether data begins with the class-file magic
// number. It is a cheap four-byte sniff test, not a validation of the
// rest of the file.
func IsClass(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return binary.BigEndian.Uint32(data[:4]) == ClassMagic
}

// IsClassFile opens path and sniffs its magic number, without
// decoding the rest of the file. Unlike UnpackClassFile, it never
// returns an error: a missing file, an unreadable file, or a file too
// short to hold a magic number all simply report false, matching the
// tolerant boolean contract of the original is_class_file.
func IsClassFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}
	return IsClass(magic[:])
}

// UnpackClass decodes a class file already held in memory.
func UnpackClass(data []byte, opts *Options) (*ClassFile, error) {
	return NewBytes(data, opts)
}

// UnpackClassFile opens and decodes the class file at path, mmap'ing
// it for zero-copy access. The returned ClassFile must be Closed once
// the caller is done with it.
func UnpackClassFile(path string, opts *Options) (*ClassFile, error) {
	return New(path, opts)
}
