// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import "testing"

func TestMemberGetIdentifierBridgeDisambiguation(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Box")
	super := b.addClass("java/lang/Object")
	b.thisClass, b.superClass = this, super
	b.addMethod(AccPublic, "get", "()Ljava/lang/Object;")
	b.addMethod(AccPublic|AccBridge|AccSynthetic, "get", "()Ljava/lang/String;")

	cf, err := UnpackClass(b.bytes(), nil)
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	plain, bridge := cf.Methods[0], cf.Methods[1]
	if bridge.IsBridge() != true || plain.IsBridge() {
		t.Fatalf("bridge flag misread: plain=%v bridge=%v", plain.IsBridge(), bridge.IsBridge())
	}
	if !bridge.IsSynthetic() {
		t.Error("bridge method should report IsSynthetic via ACC_SYNTHETIC")
	}

	plainID, err := plain.GetIdentifier()
	if err != nil {
		t.Fatalf("GetIdentifier failed: %v", err)
	}
	bridgeID, err := bridge.GetIdentifier()
	if err != nil {
		t.Fatalf("GetIdentifier failed: %v", err)
	}
	if plainID == bridgeID {
		t.Errorf("bridge method identifier %q collides with the method it bridges %q", bridgeID, plainID)
	}
	if want := "get():()Ljava/lang/String;"; bridgeID != want {
		t.Errorf("bridge GetIdentifier() = %q, want %q", bridgeID, want)
	}
	if want := "get()"; plainID != want {
		t.Errorf("plain GetIdentifier() = %q, want %q", plainID, want)
	}
}

func TestMemberIsDeprecatedAttributeOnly(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Box")
	super := b.addClass("java/lang/Object")
	b.thisClass, b.superClass = this, super
	b.addMethod(AccPublic, "plain", "()V")

	cf, err := UnpackClass(b.bytes(), nil)
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	m := cf.Methods[0]
	if m.IsDeprecated() {
		t.Error("method without a Deprecated attribute should not report IsDeprecated")
	}

	m.Attributes = AttributeTable{"Deprecated": {}}
	if !m.IsDeprecated() {
		t.Error("method with a Deprecated attribute should report IsDeprecated")
	}
	// The access-flag space has no Deprecated bit: presence of the
	// attribute is the only signal, unlike IsSynthetic's OR-with-bit
	// behavior.
	if m.IsSynthetic() {
		t.Error("adding a Deprecated attribute must not affect IsSynthetic")
	}
}

func TestMemberPrettyDescriptorSuppressesInitReturnType(t *testing.T) {
	b := newClassBuilder()
	this := b.addClass("pkg/Box")
	super := b.addClass("java/lang/Object")
	b.thisClass, b.superClass = this, super
	b.addMethod(AccPublic, "<init>", "(I)V")

	cf, err := UnpackClass(b.bytes(), nil)
	if err != nil {
		t.Fatalf("UnpackClass failed: %v", err)
	}

	desc, err := cf.Methods[0].PrettyDescriptor()
	if err != nil {
		t.Fatalf("PrettyDescriptor failed: %v", err)
	}
	if want := "public <init>(int)"; desc != want {
		t.Errorf("PrettyDescriptor() = %q, want %q", desc, want)
	}
}
