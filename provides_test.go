// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestProvidesAndRequiresDisjoint(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Widget")
	super := b.addClass("pkg/Base")
	b.thisClass, b.superClass = this, super
	b.accessFlags = AccPublic | AccSuper
	b.addField(AccPublic, "count", "I")
	b.addMethod(AccPublic, "getCount", "()I")
	b.addMethod(AccPrivate, "helper", "()V")

	cf, err := UnpackClass(b.bytes(), &Options{IncludePrivate: true})
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	provides, err := cf.Provides(true, nil)
	if err != nil {
		t.Fatalf("Provides failed: %v", err)
	}
	requires, err := cf.Requires(nil)
	if err != nil {
		t.Fatalf("Requires failed: %v", err)
	}

	if _, ok := provides["pkg.Widget"]; !ok {
		t.Errorf("Provides() missing the class's own name: %v", provides)
	}
	if _, ok := provides["getCount()"]; !ok {
		t.Errorf("Provides() missing getCount(): %v", provides)
	}
	if _, ok := provides["helper()"]; !ok {
		t.Errorf("Provides(private=true) missing private helper(): %v", provides)
	}

	if _, ok := requires["pkg.Base"]; !ok {
		t.Errorf("Requires() missing superclass pkg.Base: %v", requires)
	}

	for id := range provides {
		if _, clash := requires[id]; clash {
			t.Errorf("identifier %q present in both Provides and Requires", id)
		}
	}
}

func TestProvidesExcludesPrivateByDefault(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Widget")
	super := b.addClass("java/lang/Object")
	b.thisClass, b.superClass = this, super
	b.addMethod(AccPrivate, "helper", "()V")

	cf, err := UnpackClass(b.bytes(), nil)
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	provides, err := cf.Provides(false, nil)
	if err != nil {
		t.Fatalf("Provides failed: %v", err)
	}
	if _, ok := provides["helper()"]; ok {
		t.Errorf("Provides(private=false) should not include private members: %v", provides)
	}
}

func TestRequiresPeelsArrayElementType(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Widget")
	super := b.addClass("java/lang/Object")
	b.thisClass, b.superClass = this, super
	// A Class constant for an array-of-String type, as would appear
	// for a "[Ljava/lang/String;" local variable or field type used
	// reflectively (e.g. via a Class literal).
	arrayName := b.addConst(cpUtf8("[Ljava/lang/String;"))
	b.addConst(cpClass(arrayName))

	cf, err := UnpackClass(b.bytes(), nil)
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	requires, err := cf.Requires(nil)
	if err != nil {
		t.Fatalf("Requires failed: %v", err)
	}
	if _, ok := requires["java.lang.String"]; !ok {
		t.Errorf("Requires() should peel the array to its element class: %v", requires)
	}
}

// TestRequiresPeelsArrayOwnerOfMethodref covers a real javac pattern:
// an invokevirtual on an array type's clone() method (e.g.
// "[Ljava/lang/String;.clone()" or "[I.clone()") stores the array
// type itself as the Methodref's owning class. The owner must be
// peeled the same way a bare array Class constant is: to its element
// class when the element is an object type, and to nothing at all
// when the element is primitive.
func TestRequiresPeelsArrayOwnerOfMethodref(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Widget")
	super := b.addClass("java/lang/Object")
	b.thisClass, b.superClass = this, super

	objArrayOwner := b.addClass("[Ljava/lang/String;")
	cloneName := b.addConst(cpUtf8("clone"))
	cloneDesc := b.addConst(cpUtf8("()Ljava/lang/Object;"))
	objNT := b.addConst(cpRefPair(TagNameAndType, cloneName, cloneDesc))
	b.addConst(cpRefPair(TagMethodref, objArrayOwner, objNT))

	primArrayOwner := b.addClass("[I")
	primNT := b.addConst(cpRefPair(TagNameAndType, cloneName, cloneDesc))
	b.addConst(cpRefPair(TagMethodref, primArrayOwner, primNT))

	cf, err := UnpackClass(b.bytes(), nil)
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	requires, err := cf.Requires(nil)
	if err != nil {
		t.Fatalf("Requires failed: %v", err)
	}

	if _, ok := requires["java.lang.String"]; !ok {
		t.Errorf("Requires() should peel a Methodref's array owner to its element class: %v", requires)
	}
	if _, ok := requires["[Ljava.lang.String;"]; ok {
		t.Errorf("Requires() must not contain the unpeeled array owner: %v", requires)
	}
	if _, ok := requires["[I"]; ok {
		t.Errorf("Requires() must not emit anything for a primitive array owner: %v", requires)
	}
}
