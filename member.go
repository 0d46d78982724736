// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"fmt"
	"strings"
)

// Member access-flag bits, shared by fields and methods. Several bits
// are reused with a different meaning depending on which kind of
// member (or, for 0x0020, which kind of structure entirely) they
// decorate — ACC_SUPER on a class collides with ACC_SYNCHRONIZED on a
// method, ACC_VOLATILE on a field collides with ACC_BRIDGE on a
// method, and so on. Unknown bits are ignored for forward
// compatibility, never treated as an error.
const (
	AccPublic       uint16 = 0x0001
	AccPrivate      uint16 = 0x0002
	AccProtected    uint16 = 0x0004
	AccStatic       uint16 = 0x0008
	AccFinal        uint16 = 0x0010
	AccSuper        uint16 = 0x0020 // classes
	AccSynchronized uint16 = 0x0020 // methods
	AccVolatile     uint16 = 0x0040 // fields
	AccBridge       uint16 = 0x0040 // methods
	AccTransient    uint16 = 0x0080 // fields
	AccVarargs      uint16 = 0x0080 // methods
	AccNative       uint16 = 0x0100
	AccInterface    uint16 = 0x0200
	AccAbstract     uint16 = 0x0400
	AccStrict       uint16 = 0x0800
	AccSynthetic    uint16 = 0x1000
	AccAnnotation   uint16 = 0x2000
	AccEnum         uint16 = 0x4000
	AccModule       uint16 = 0x8000
)

// Member is a field or a method of a class or interface: its access
// flags, the constant-pool indices naming it and describing its type,
// and its own attribute table. Named-attribute accessors (Code,
// Exceptions, ConstantValue, Signature, ...) decode lazily from that
// table on each call, per spec.md §4.5 and §9 — the decoded Member
// itself stays cheap to build even for classes with large,
// rarely-inspected attribute payloads.
//
// Grounded on the teacher's Symbol type (symbol.go): a named,
// flagged, typed entry read off a counted table, with the interesting
// per-entry data (COFF aux records there, Code/Exceptions/
// ConstantValue here) deferred to on-demand accessors rather than
// eagerly unpacked for every entry.
type Member struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      AttributeTable
	IsMethod        bool

	cp *ConstantPool
}

func decodeMembers(u *unpacker, cp *ConstantPool, isMethod bool) ([]*Member, error) {
	n, err := u.count()
	if err != nil {
		return nil, err
	}
	members := make([]*Member, n)
	for i := range members {
		m := &Member{IsMethod: isMethod, cp: cp}
		if err := m.unpack(u); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		members[i] = m
	}
	return members, nil
}

func (m *Member) unpack(u *unpacker) error {
	flags, err := u.u16()
	if err != nil {
		return err
	}
	nameIdx, err := u.u16()
	if err != nil {
		return err
	}
	descIdx, err := u.u16()
	if err != nil {
		return err
	}
	var attrs AttributeTable
	if err := attrs.unpack(u, m.cp); err != nil {
		return err
	}
	m.AccessFlags, m.NameIndex, m.DescriptorIndex, m.Attributes = flags, nameIdx, descIdx, attrs
	return nil
}

// Name dereferences NameIndex.
func (m *Member) Name() (string, error) {
	return m.cp.derefUtf8(m.NameIndex)
}

// Descriptor dereferences DescriptorIndex: the raw JVM type
// descriptor for a field, or the method descriptor "(args)ret".
func (m *Member) Descriptor() (string, error) {
	return m.cp.derefUtf8(m.DescriptorIndex)
}

// ArgDescriptors returns the parameter descriptor tokens of a method;
// it is empty for a field.
func (m *Member) ArgDescriptors() ([]string, error) {
	if !m.IsMethod {
		return nil, nil
	}
	desc, err := m.Descriptor()
	if err != nil {
		return nil, err
	}
	args, _, err := methodDescriptorParts(desc)
	if err != nil {
		return nil, err
	}
	return argDescriptors(args)
}

// TypeDescriptor returns the descriptor token for a field's type, or
// for a method, its return type.
func (m *Member) TypeDescriptor() (string, error) {
	desc, err := m.Descriptor()
	if err != nil {
		return "", err
	}
	if !m.IsMethod {
		tokens, err := descriptorTokens(desc)
		if err != nil {
			return "", err
		}
		if len(tokens) != 1 {
			return "", unimplemented("field descriptor", desc)
		}
		return tokens[0], nil
	}
	_, ret, err := methodDescriptorParts(desc)
	return ret, err
}

// PrettyType is the pretty-printed form of TypeDescriptor.
func (m *Member) PrettyType() (string, error) {
	tok, err := m.TypeDescriptor()
	if err != nil {
		return "", err
	}
	return prettyType(tok)
}

// PrettyArgTypes is the pretty-printed argument type list of a
// method; it is empty for a field.
func (m *Member) PrettyArgTypes() ([]string, error) {
	if !m.IsMethod {
		return nil, nil
	}
	args, err := m.ArgDescriptors()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(args))
	for i, a := range args {
		p, err := prettyType(a)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (m *Member) is(flag uint16) bool { return m.AccessFlags&flag != 0 }

func (m *Member) IsPublic() bool    { return m.is(AccPublic) }
func (m *Member) IsPrivate() bool   { return m.is(AccPrivate) }
func (m *Member) IsProtected() bool { return m.is(AccProtected) }
func (m *Member) IsStatic() bool    { return m.is(AccStatic) }
func (m *Member) IsFinal() bool     { return m.is(AccFinal) }
func (m *Member) IsNative() bool    { return m.is(AccNative) }
func (m *Member) IsAbstract() bool  { return m.is(AccAbstract) }
func (m *Member) IsStrict() bool    { return m.is(AccStrict) }
func (m *Member) IsEnum() bool      { return m.is(AccEnum) }
func (m *Member) IsModule() bool    { return m.is(AccModule) }

// IsSynchronized is only meaningful for methods; ACC_SYNCHRONIZED
// shares its bit with a class's ACC_SUPER.
func (m *Member) IsSynchronized() bool { return m.IsMethod && m.is(AccSynchronized) }

// IsBridge is only meaningful for methods; ACC_BRIDGE shares its bit
// with a field's ACC_VOLATILE.
func (m *Member) IsBridge() bool { return m.IsMethod && m.is(AccBridge) }

// IsVarargs is only meaningful for methods; ACC_VARARGS shares its
// bit with a field's ACC_TRANSIENT.
func (m *Member) IsVarargs() bool { return m.IsMethod && m.is(AccVarargs) }

// IsVolatile is only meaningful for fields.
func (m *Member) IsVolatile() bool { return !m.IsMethod && m.is(AccVolatile) }

// IsTransient is only meaningful for fields.
func (m *Member) IsTransient() bool { return !m.IsMethod && m.is(AccTransient) }

// IsSynthetic is true when either ACC_SYNTHETIC is set or a
// "Synthetic" attribute is present — the bit postdates the attribute
// in the JVM spec's history, and class files may carry either.
func (m *Member) IsSynthetic() bool {
	if m.is(AccSynthetic) {
		return true
	}
	_, ok := m.Attributes.Get("Synthetic")
	return ok
}

// IsDeprecated reports whether a "Deprecated" attribute is present.
func (m *Member) IsDeprecated() bool {
	_, ok := m.Attributes.Get("Deprecated")
	return ok
}

// Signature dereferences the "Signature" attribute, if present, to
// its generic-type signature string.
func (m *Member) Signature() (sig string, ok bool, err error) {
	payload, ok := m.Attributes.Get("Signature")
	if !ok {
		return "", false, nil
	}
	u := newUnpacker(payload)
	idx, err := u.u16()
	if err != nil {
		return "", false, err
	}
	sig, err = m.cp.derefUtf8(idx)
	if err != nil {
		return "", false, err
	}
	return sig, true, nil
}

// ConstantValueIndex dereferences a field's "ConstantValue" attribute
// to the constant-pool index it names, if present.
func (m *Member) ConstantValueIndex() (index uint16, ok bool, err error) {
	payload, ok := m.Attributes.Get("ConstantValue")
	if !ok {
		return 0, false, nil
	}
	u := newUnpacker(payload)
	index, err = u.u16()
	if err != nil {
		return 0, false, err
	}
	return index, true, nil
}

// DerefConstantValue resolves ConstantValueIndex through the
// constant pool.
func (m *Member) DerefConstantValue() (value interface{}, ok bool, err error) {
	idx, ok, err := m.ConstantValueIndex()
	if err != nil || !ok {
		return nil, ok, err
	}
	value, err = m.cp.DerefConst(idx)
	return value, true, err
}

// Exceptions dereferences a method's "Exceptions" attribute to the
// list of class names it may throw. It is empty for fields and for
// methods without the attribute.
func (m *Member) Exceptions() ([]string, error) {
	payload, ok := m.Attributes.Get("Exceptions")
	if !ok {
		return nil, nil
	}
	u := newUnpacker(payload)
	refs, err := u.u16Array()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		name, err := m.cp.derefClassName(r)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// PrettyExceptions is the pretty-printed form of Exceptions (an
// alias; class names are already rendered dotted).
func (m *Member) PrettyExceptions() ([]string, error) {
	return m.Exceptions()
}

// Code decodes the method's "Code" attribute, if present. It is nil
// for fields, and for abstract or native methods.
func (m *Member) Code() (*CodeAttribute, error) {
	payload, ok := m.Attributes.Get("Code")
	if !ok {
		return nil, nil
	}
	return decodeCode(payload, m.cp)
}

// ModuleIndex dereferences a "Module" attribute's module-id index, if
// present.
func (m *Member) ModuleIndex() (index uint16, ok bool, err error) {
	payload, ok := m.Attributes.Get("Module")
	if !ok {
		return 0, false, nil
	}
	u := newUnpacker(payload)
	index, err = u.u16()
	if err != nil {
		return 0, false, err
	}
	return index, true, nil
}

// GetIdentifier returns a canonical identity string suitable for
// symbol-set operations (provides/requires): for fields it is the
// name; for methods it is "name(argDescriptors)", and bridge methods
// additionally carry the full descriptor as a suffix, since a bridge
// method may otherwise collide with the method it bridges (same name,
// same arguments, different return type).
func (m *Member) GetIdentifier() (string, error) {
	name, err := m.Name()
	if err != nil {
		return "", err
	}
	if !m.IsMethod {
		return name, nil
	}

	args, err := m.ArgDescriptors()
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s(%s)", name, strings.Join(args, ","))

	if m.IsBridge() {
		desc, err := m.Descriptor()
		if err != nil {
			return "", err
		}
		id = fmt.Sprintf("%s:%s", id, desc)
	}
	return id, nil
}

// PrettyIdentifier is "name(prettyArgType,...):prettyReturnType".
func (m *Member) PrettyIdentifier() (string, error) {
	name, err := m.Name()
	if err != nil {
		return "", err
	}
	if m.IsMethod {
		args, err := m.PrettyArgTypes()
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("%s(%s)", name, strings.Join(args, ","))
	}
	t, err := m.PrettyType()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s", name, t), nil
}

// prettyAccessFlags emits keywords in the canonical ordering spec.md
// §4.5 fixes: public, private, protected, static, final, strict,
// native, abstract, enum, module, then synthetic (only when "all" is
// requested), then the member-kind-specific flags: for methods
// synchronized, then bridge and varargs (only when "all" is
// requested); for fields transient, volatile.
func (m *Member) prettyAccessFlags(all bool) []string {
	var kw []string
	add := func(ok bool, word string) {
		if ok {
			kw = append(kw, word)
		}
	}

	add(m.IsPublic(), "public")
	add(m.IsPrivate(), "private")
	add(m.IsProtected(), "protected")
	add(m.IsStatic(), "static")
	add(m.IsFinal(), "final")
	add(m.IsStrict(), "strict")
	add(m.IsNative(), "native")
	add(m.IsAbstract(), "abstract")
	add(m.IsEnum(), "enum")
	add(m.IsModule(), "module")

	add(all && m.IsSynthetic(), "synthetic")

	if m.IsMethod {
		add(m.IsSynchronized(), "synchronized")
		add(all && m.IsBridge(), "bridge")
		add(all && m.IsVarargs(), "varargs")
	} else {
		add(m.IsTransient(), "transient")
		add(m.IsVolatile(), "volatile")
	}

	return kw
}

// PrettyAccessFlags returns the member's access-flag keywords in
// canonical order. Pass all=true to also include the synthetic,
// bridge and varargs keywords, which javap only shows in verbose mode.
func (m *Member) PrettyAccessFlags(all bool) []string {
	return m.prettyAccessFlags(all)
}

// PrettyDescriptor assembles a single human-readable declaration:
// access-flag keywords, return type (suppressed for a "<init>"
// constructor, even though its descriptor always names V), the name
// (with a parenthesized pretty argument list for methods), and a
// "throws" clause built from Exceptions.
func (m *Member) PrettyDescriptor() (string, error) {
	name, err := m.Name()
	if err != nil {
		return "", err
	}

	flags := strings.Join(m.PrettyAccessFlags(false), " ")

	var typ string
	if name != "<init>" {
		typ, err = m.PrettyType()
		if err != nil {
			return "", err
		}
	}

	if m.IsMethod {
		args, err := m.PrettyArgTypes()
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("%s(%s)", name, strings.Join(args, ","))
	}

	var throws string
	if m.IsMethod {
		exc, err := m.PrettyExceptions()
		if err != nil {
			return "", err
		}
		if len(exc) > 0 {
			throws = "throws " + strings.Join(exc, ",")
		}
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{flags, typ, name, throws} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " "), nil
}
