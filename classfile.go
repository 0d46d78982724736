// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"

	"github.com/go-jvm/jclass/internal/log"
)

// ClassMagic is the fixed 4-byte signature every class file begins
// with.
const ClassMagic uint32 = 0xCAFEBABE

// Options configures how a ClassFile is decoded.
//
// Grounded on the teacher's Options struct (file.go): a small,
// exported struct of decode-time knobs passed once at construction,
// plus an injectable Logger rather than a package-global one.
type Options struct {
	// IncludePrivate, when false, excludes private fields and methods
	// from GetFieldByName/GetMethodsByName/GetMethod results. It has
	// no effect on Fields/Methods themselves, which always hold every
	// declared member.
	IncludePrivate bool

	// MaxConstantPoolSize caps the constant-pool entry count this
	// decoder will accept: a class file whose pool count exceeds it
	// is rejected. The check runs after the pool has been decoded, so
	// it does not bound the pool's own allocation. Zero means
	// unlimited.
	MaxConstantPoolSize uint16

	// Logger receives recoverable parse anomalies. A nil Logger
	// selects a default that writes error-level records to stderr.
	Logger log.Logger
}

// ClassFile is the fully decoded structure of a single .class file:
// its version, constant pool, access flags, superclass/interface
// graph, members, and class-level attributes.
//
// Grounded on the teacher's File type (file.go): the top-level decoded
// structure owning the backing bytes (directly or via mmap), the
// options it was constructed with, and a *log.Helper for anomaly
// reporting, with Parse() as the single entry point that walks the
// format top to bottom.
type ClassFile struct {
	MinorVersion  uint16
	MajorVersion  uint16
	Pool          ConstantPool
	AccessFlags   uint16
	ThisClassRef  uint16
	SuperClassRef uint16
	InterfaceRefs []uint16
	Fields        []*Member
	Methods       []*Member
	Attributes    AttributeTable

	opts   *Options
	helper *log.Helper
	closer func() error

	providesOnce        sync.Once
	providesPublic      map[string]struct{}
	providesPrivateOnce sync.Once
	providesPrivate     map[string]struct{}
	requiresOnce        sync.Once
	requires            map[string]struct{}
}

// New opens the class file at path, mmap'ing it for zero-copy access,
// and decodes it. Close must be called to release the mapping.
func New(path string, opts *Options) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, ErrTooSmall
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	cf := newClassFile(opts)
	cf.closer = func() error {
		if err := m.Unmap(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	if err := cf.Unpack([]byte(m)); err != nil {
		cf.Close()
		return nil, err
	}
	return cf, nil
}

// NewBytes decodes a class file already held in memory. There is
// nothing to Close; calling Close is a harmless no-op.
func NewBytes(data []byte, opts *Options) (*ClassFile, error) {
	cf := newClassFile(opts)
	if err := cf.Unpack(data); err != nil {
		return nil, err
	}
	return cf, nil
}

func newClassFile(opts *Options) *ClassFile {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelError))
	}
	return &ClassFile{opts: opts, helper: log.NewHelper(logger)}
}

// Close releases any resources New acquired. It is safe to call on a
// ClassFile built with NewBytes.
func (cf *ClassFile) Close() error {
	if cf.closer == nil {
		return nil
	}
	err := cf.closer()
	cf.closer = nil
	return err
}

// Unpack decodes data in place, replacing cf's fields. It is exported
// so a caller can reuse a ClassFile's Options across several files
// without going through New/NewBytes, mirroring the teacher's
// Parse()-after-construction split.
func (cf *ClassFile) Unpack(data []byte) error {
	if len(data) < 10 {
		return ErrTooSmall
	}

	u := newUnpacker(data)

	magic, err := u.u32()
	if err != nil {
		return err
	}
	if magic != ClassMagic {
		return ErrNotAClassFile
	}

	minor, err := u.u16()
	if err != nil {
		return err
	}
	major, err := u.u16()
	if err != nil {
		return err
	}

	var pool ConstantPool
	if err := pool.unpack(u); err != nil {
		return fmt.Errorf("constant pool: %w", err)
	}
	if cf.opts.MaxConstantPoolSize > 0 && uint16(len(pool.entries)) > cf.opts.MaxConstantPoolSize {
		return fmt.Errorf("jclass: constant pool size %d exceeds MaxConstantPoolSize %d",
			len(pool.entries), cf.opts.MaxConstantPoolSize)
	}

	flags, err := u.u16()
	if err != nil {
		return err
	}
	thisRef, err := u.u16()
	if err != nil {
		return err
	}
	superRef, err := u.u16()
	if err != nil {
		return err
	}
	ifaces, err := u.u16Array()
	if err != nil {
		return fmt.Errorf("interfaces: %w", err)
	}

	fields, err := decodeMembers(u, &pool, false)
	if err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	methods, err := decodeMembers(u, &pool, true)
	if err != nil {
		return fmt.Errorf("methods: %w", err)
	}

	var attrs AttributeTable
	if err := attrs.unpack(u, &pool); err != nil {
		return fmt.Errorf("class attributes: %w", err)
	}

	cf.MinorVersion = minor
	cf.MajorVersion = major
	cf.Pool = pool
	cf.AccessFlags = flags
	cf.ThisClassRef = thisRef
	cf.SuperClassRef = superRef
	cf.InterfaceRefs = ifaces
	cf.Fields = fields
	cf.Methods = methods
	cf.Attributes = attrs
	// Drop any sets memoized by Provides/Requires for earlier data.
	cf.providesOnce, cf.providesPublic = sync.Once{}, nil
	cf.providesPrivateOnce, cf.providesPrivate = sync.Once{}, nil
	cf.requiresOnce, cf.requires = sync.Once{}, nil
	return nil
}

// ThisClass dereferences ThisClassRef to this class's dotted name.
func (cf *ClassFile) ThisClass() (string, error) {
	return cf.Pool.derefClassName(cf.ThisClassRef)
}

// SuperClass dereferences SuperClassRef to the superclass's dotted
// name. ok is false when SuperClassRef is zero, which is the case
// only for java.lang.Object; an interface names java.lang.Object.
func (cf *ClassFile) SuperClass() (name string, ok bool, err error) {
	if cf.SuperClassRef == 0 {
		return "", false, nil
	}
	name, err = cf.Pool.derefClassName(cf.SuperClassRef)
	return name, err == nil, err
}

// Interfaces dereferences every entry of InterfaceRefs to its dotted
// name, in file order.
func (cf *ClassFile) Interfaces() ([]string, error) {
	out := make([]string, len(cf.InterfaceRefs))
	for i, ref := range cf.InterfaceRefs {
		name, err := cf.Pool.derefClassName(ref)
		if err != nil {
			return nil, err
		}
		out[i] = name
	}
	return out, nil
}

func (cf *ClassFile) is(flag uint16) bool { return cf.AccessFlags&flag != 0 }

func (cf *ClassFile) IsPublic() bool    { return cf.is(AccPublic) }
func (cf *ClassFile) IsFinal() bool     { return cf.is(AccFinal) }
func (cf *ClassFile) IsInterface() bool { return cf.is(AccInterface) }
func (cf *ClassFile) IsAbstract() bool  { return cf.is(AccAbstract) }
func (cf *ClassFile) IsSynthetic() bool {
	if cf.is(AccSynthetic) {
		return true
	}
	_, ok := cf.Attributes.Get("Synthetic")
	return ok
}
func (cf *ClassFile) IsAnnotation() bool { return cf.is(AccAnnotation) }
func (cf *ClassFile) IsEnum() bool       { return cf.is(AccEnum) }
func (cf *ClassFile) IsModule() bool     { return cf.is(AccModule) }

// IsDeprecated reports whether the class carries a "Deprecated"
// attribute.
func (cf *ClassFile) IsDeprecated() bool {
	_, ok := cf.Attributes.Get("Deprecated")
	return ok
}

// SourceFile dereferences the "SourceFile" attribute, if present.
func (cf *ClassFile) SourceFile() (name string, ok bool, err error) {
	payload, ok := cf.Attributes.Get("SourceFile")
	if !ok {
		return "", false, nil
	}
	u := newUnpacker(payload)
	idx, err := u.u16()
	if err != nil {
		return "", false, err
	}
	name, err = cf.Pool.derefUtf8(idx)
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// SourceDebugExtension returns the raw (modified-UTF-8-free, plain
// UTF-8 per the JVM spec) payload of the "SourceDebugExtension"
// attribute, if present.
func (cf *ClassFile) SourceDebugExtension() (text string, ok bool) {
	payload, ok := cf.Attributes.Get("SourceDebugExtension")
	if !ok {
		return "", false
	}
	return string(payload), true
}

// Signature dereferences the "Signature" attribute's generic class
// signature, if present.
func (cf *ClassFile) Signature() (sig string, ok bool, err error) {
	payload, ok := cf.Attributes.Get("Signature")
	if !ok {
		return "", false, nil
	}
	u := newUnpacker(payload)
	idx, err := u.u16()
	if err != nil {
		return "", false, err
	}
	sig, err = cf.Pool.derefUtf8(idx)
	if err != nil {
		return "", false, err
	}
	return sig, true, nil
}

// InnerClasses decodes the "InnerClasses" attribute, if present.
func (cf *ClassFile) InnerClasses() ([]InnerClassInfo, error) {
	payload, ok := cf.Attributes.Get("InnerClasses")
	if !ok {
		return nil, nil
	}
	return decodeInnerClasses(payload, &cf.Pool)
}

// EnclosingMethod dereferences the "EnclosingMethod" attribute, if
// present: the enclosing class, and the enclosing method name/
// descriptor when the class is enclosed by a method body rather than
// directly by a class (method_index is zero for the latter, which is
// not an error — it is logged at debug level, and name and descriptor
// are returned empty with ok still true).
func (cf *ClassFile) EnclosingMethod() (class, name, descriptor string, ok bool, err error) {
	payload, ok := cf.Attributes.Get("EnclosingMethod")
	if !ok {
		return "", "", "", false, nil
	}
	u := newUnpacker(payload)
	classIdx, err := u.u16()
	if err != nil {
		return "", "", "", false, err
	}
	methodIdx, err := u.u16()
	if err != nil {
		return "", "", "", false, err
	}
	class, err = cf.Pool.derefClassName(classIdx)
	if err != nil {
		return "", "", "", false, err
	}
	if methodIdx == 0 {
		cf.helper.Debugf("EnclosingMethod on %s has no method_index; class is enclosed directly", class)
		return class, "", "", true, nil
	}
	name, descriptor, err = cf.Pool.derefNameAndType(methodIdx)
	if err != nil {
		return "", "", "", false, err
	}
	return class, name, descriptor, true, nil
}

// platformTable maps a (major, minor) version pair to the lowest JDK
// release that could have produced it, per original_source's
// _platforms table.
var platformTable = []struct {
	maxMajor, maxMinor uint16
	platform           string
}{
	{45, 3, "1.0.2"},
	{45, 65535, "1.1"},
	{46, 65535, "1.2"},
	{47, 65535, "1.3"},
	{48, 65535, "1.4"},
	{49, 65535, "1.5"},
	{50, 65535, "1.6"},
	{51, 65535, "1.7"},
	{52, 65535, "1.8"},
}

// Platform returns the lowest JDK release whose compiler could have
// produced this class file's version, or "" if the version exceeds
// every known release.
func (cf *ClassFile) Platform() string {
	for _, row := range platformTable {
		if cf.MajorVersion < row.maxMajor ||
			(cf.MajorVersion == row.maxMajor && cf.MinorVersion <= row.maxMinor) {
			return row.platform
		}
	}
	return ""
}

// GetFieldByName returns the first field named name, honoring
// IncludePrivate.
func (cf *ClassFile) GetFieldByName(name string) (*Member, bool, error) {
	for _, f := range cf.Fields {
		if !cf.opts.IncludePrivate && f.IsPrivate() {
			continue
		}
		n, err := f.Name()
		if err != nil {
			return nil, false, err
		}
		if n == name {
			return f, true, nil
		}
	}
	return nil, false, nil
}

// GetMethodsByName returns every method named name, honoring
// IncludePrivate, in declaration order.
func (cf *ClassFile) GetMethodsByName(name string) ([]*Member, error) {
	var out []*Member
	for _, m := range cf.Methods {
		if !cf.opts.IncludePrivate && m.IsPrivate() {
			continue
		}
		n, err := m.Name()
		if err != nil {
			return nil, err
		}
		if n == name {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetMethod returns the method named name with exactly descriptor,
// which disambiguates overloads.
func (cf *ClassFile) GetMethod(name, descriptor string) (*Member, bool, error) {
	candidates, err := cf.GetMethodsByName(name)
	if err != nil {
		return nil, false, err
	}
	for _, m := range candidates {
		d, err := m.Descriptor()
		if err != nil {
			return nil, false, err
		}
		if d == descriptor {
			return m, true, nil
		}
	}
	return nil, false, nil
}

// GetMethodBridges returns every bridge method named name: synthetic
// methods the compiler emits to preserve erased-generic override
// compatibility, which GetMethod cannot disambiguate from the method
// they bridge to by descriptor alone in every case.
func (cf *ClassFile) GetMethodBridges(name string) ([]*Member, error) {
	candidates, err := cf.GetMethodsByName(name)
	if err != nil {
		return nil, err
	}
	var out []*Member
	for _, m := range candidates {
		if m.IsBridge() {
			out = append(out, m)
		}
	}
	return out, nil
}

// PrettyDescriptor renders the class declaration the way javap's
// summary line would: access flags, "class"/"interface", the class
// name, an "extends" clause whenever SuperClassRef is nonzero (so
// java.lang.Object has none, while an interface shows its nominal
// java.lang.Object super), and an "implements"
// clause when interfaces are present. ACC_SUPER is never shown: it
// shares ACC_SYNCHRONIZED's bit value and carries no source-level
// meaning of its own.
func (cf *ClassFile) PrettyDescriptor() (string, error) {
	var kw []string
	add := func(ok bool, word string) {
		if ok {
			kw = append(kw, word)
		}
	}
	add(cf.IsPublic(), "public")
	add(cf.IsFinal(), "final")
	add(cf.IsAbstract(), "abstract")
	add(cf.IsAnnotation(), "annotation")
	add(cf.IsEnum(), "enum")

	this, err := cf.ThisClass()
	if err != nil {
		return "", err
	}

	kind := "class"
	if cf.IsInterface() {
		kind = "interface"
	}

	parts := append(append([]string{}, kw...), kind, this)

	super, ok, err := cf.SuperClass()
	if err != nil {
		return "", err
	}
	if ok {
		parts = append(parts, "extends", super)
	}

	ifaces, err := cf.Interfaces()
	if err != nil {
		return "", err
	}
	if len(ifaces) > 0 {
		parts = append(parts, "implements", strings.Join(ifaces, ","))
	}

	return strings.Join(parts, " "), nil
}
