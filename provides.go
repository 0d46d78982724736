// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"strings"
)

// Fnmatcher reports whether name matches any of patterns, shell-glob
// style. Provides and Requires accept one as an optional filter so a
// caller can exclude members by name pattern (e.g. generated
// accessors, test-only methods) without jclass itself depending on a
// glob-matching package; jclass core never calls one on its own.
type Fnmatcher func(name string, patterns ...string) bool

// Provides returns the set of identifiers (per Member.GetIdentifier)
// this class declares: the class's own name, plus every field and
// method identifier. With private set to false only public
// members are included; with private set to true every declared
// member is included regardless of its own access flags. Each
// visibility's result is memoized on first call, since repeated
// recomputation would otherwise re-walk every member every time.
func (cf *ClassFile) Provides(private bool, match Fnmatcher, exclude ...string) (map[string]struct{}, error) {
	once := &cf.providesOnce
	slot := &cf.providesPublic
	if private {
		once = &cf.providesPrivateOnce
		slot = &cf.providesPrivate
	}

	var outerErr error
	once.Do(func() {
		set := map[string]struct{}{}
		this, err := cf.ThisClass()
		if err != nil {
			outerErr = err
			return
		}
		set[this] = struct{}{}

		members := make([]*Member, 0, len(cf.Fields)+len(cf.Methods))
		members = append(members, cf.Fields...)
		members = append(members, cf.Methods...)
		for _, m := range members {
			if !private && !m.IsPublic() {
				continue
			}
			id, err := m.GetIdentifier()
			if err != nil {
				outerErr = err
				return
			}
			set[id] = struct{}{}
		}
		*slot = set
	})
	if outerErr != nil {
		return nil, outerErr
	}
	if match == nil || len(exclude) == 0 {
		return *slot, nil
	}
	return filterSet(*slot, match, exclude), nil
}

// Requires returns the set of class names this class's constant pool
// references other than itself: superclass, interfaces, every Class
// constant, and the owning class of every Fieldref/Methodref/
// InterfaceMethodref — with array element types peeled down to their
// component class (spec.md treats "[Ljava/lang/String;" as requiring
// java.lang.String, not the array type itself). The result is
// memoized on first call.
func (cf *ClassFile) Requires(match Fnmatcher, exclude ...string) (map[string]struct{}, error) {
	var outerErr error
	cf.requiresOnce.Do(func() {
		set := map[string]struct{}{}
		this, err := cf.ThisClass()
		if err != nil {
			outerErr = err
			return
		}

		add := func(name string) {
			if name != "" && name != this {
				set[name] = struct{}{}
			}
		}
		addInternal := func(internal string) {
			add(peelArrayElementClass(internal))
		}

		if super, ok, err := cf.SuperClass(); err != nil {
			outerErr = err
			return
		} else if ok {
			add(super)
		}
		ifaces, err := cf.Interfaces()
		if err != nil {
			outerErr = err
			return
		}
		for _, i := range ifaces {
			add(i)
		}

		for idx := 1; idx < len(cf.Pool.entries); idx++ {
			e := cf.Pool.entries[idx]
			if !e.present {
				continue
			}
			switch e.tag {
			case TagClass:
				raw, err := cf.Pool.derefUtf8(e.payload.(uint16))
				if err != nil {
					outerErr = err
					return
				}
				addInternal(raw)
			case TagFieldref, TagMethodref, TagInterfaceMethodref:
				pair := e.payload.(RefPair)
				raw, err := cf.Pool.rawClassName(pair.First)
				if err != nil {
					outerErr = err
					return
				}
				addInternal(raw)
			}
		}
		cf.requires = set
	})
	if outerErr != nil {
		return nil, outerErr
	}
	if match == nil || len(exclude) == 0 {
		return cf.requires, nil
	}
	return filterSet(cf.requires, match, exclude), nil
}

// peelArrayElementClass strips leading '[' array markers and an
// optional 'L'...';' object wrapper from an internal class/descriptor
// name, returning the dotted element class name, or "" if the element
// type is primitive (and therefore requires nothing).
func peelArrayElementClass(name string) string {
	isArray := len(name) > 0 && name[0] == '['
	for len(name) > 0 && name[0] == '[' {
		name = name[1:]
	}
	if len(name) == 0 {
		return ""
	}
	if name[0] == 'L' && strings.HasSuffix(name, ";") {
		name = name[1 : len(name)-1]
	} else if isArray && name[0] != 'L' && len(name) == 1 {
		return "" // primitive element type
	}
	return prettyClassName(name)
}

func filterSet(in map[string]struct{}, match Fnmatcher, exclude []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		if match(k, exclude...) {
			continue
		}
		out[k] = struct{}{}
	}
	return out
}
