// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

// InnerClassInfo is one entry of a class's "InnerClasses" attribute:
// the inner class itself, its immediately enclosing class (zero if it
// is not a member of another class, e.g. an anonymous class), the
// simple name it was declared with (zero if anonymous), and the
// access flags it was declared with in source — which may differ
// from its own class file's top-level access flags.
type InnerClassInfo struct {
	InnerInfoRef uint16
	OuterInfoRef uint16
	NameRef      uint16
	AccessFlags  uint16

	cp *ConstantPool
}

// decodeInnerClasses parses the payload of an "InnerClasses"
// attribute: a u16 count followed by that many 4-field records.
func decodeInnerClasses(payload []byte, cp *ConstantPool) ([]InnerClassInfo, error) {
	u := newUnpacker(payload)
	n, err := u.count()
	if err != nil {
		return nil, err
	}
	out := make([]InnerClassInfo, n)
	for i := range out {
		innerRef, err := u.u16()
		if err != nil {
			return nil, err
		}
		outerRef, err := u.u16()
		if err != nil {
			return nil, err
		}
		nameRef, err := u.u16()
		if err != nil {
			return nil, err
		}
		flags, err := u.u16()
		if err != nil {
			return nil, err
		}
		out[i] = InnerClassInfo{
			InnerInfoRef: innerRef,
			OuterInfoRef: outerRef,
			NameRef:      nameRef,
			AccessFlags:  flags,
			cp:           cp,
		}
	}
	return out, nil
}

// InnerClass dereferences InnerInfoRef to the inner class's name.
func (ic InnerClassInfo) InnerClass() (string, error) {
	return ic.cp.derefClassName(ic.InnerInfoRef)
}

// OuterClass dereferences OuterInfoRef to the enclosing class's name.
// ok is false when OuterInfoRef is zero, meaning the inner class is
// not a member of another class.
func (ic InnerClassInfo) OuterClass() (name string, ok bool, err error) {
	if ic.OuterInfoRef == 0 {
		return "", false, nil
	}
	name, err = ic.cp.derefClassName(ic.OuterInfoRef)
	return name, err == nil, err
}

// Name dereferences NameRef to the simple source name the inner class
// was declared with. ok is false when NameRef is zero, meaning the
// class is anonymous.
func (ic InnerClassInfo) Name() (name string, ok bool, err error) {
	if ic.NameRef == 0 {
		return "", false, nil
	}
	name, err = ic.cp.derefUtf8(ic.NameRef)
	return name, err == nil, err
}

func (ic InnerClassInfo) is(flag uint16) bool { return ic.AccessFlags&flag != 0 }

func (ic InnerClassInfo) IsPublic() bool    { return ic.is(AccPublic) }
func (ic InnerClassInfo) IsPrivate() bool   { return ic.is(AccPrivate) }
func (ic InnerClassInfo) IsProtected() bool { return ic.is(AccProtected) }
func (ic InnerClassInfo) IsStatic() bool    { return ic.is(AccStatic) }
func (ic InnerClassInfo) IsFinal() bool     { return ic.is(AccFinal) }
func (ic InnerClassInfo) IsInterface() bool { return ic.is(AccInterface) }
func (ic InnerClassInfo) IsAbstract() bool  { return ic.is(AccAbstract) }
