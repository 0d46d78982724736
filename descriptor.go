// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"strings"
)

// descriptorTokens splits a JVM field or method descriptor into its
// constituent tokens. Grammar:
//
//	V Z B C S I J D F    a single primitive-type character
//	[<token>             an array of the following token
//	L<name>;             an object type, up to and including the ';'
//	(<tokens>)           a parenthesized, itself-decomposable sequence
//	T<name>;             a type variable (Signature attributes only)
//
// Concatenating the returned tokens always reproduces the original
// descriptor string exactly (the round-trip property spec.md §8
// requires).
//
// Ported from the original implementation's _next_argsig/_typeseq
// (original_source/src/__init__.py), which walks the same grammar one
// token at a time using string slicing; here the same walk is done
// over a Go string with byte indices instead of Python buffer slices.
func descriptorTokens(s string) ([]string, error) {
	var tokens []string
	for len(s) > 0 {
		tok, rest, err := nextDescriptorToken(s)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		s = rest
	}
	return tokens, nil
}

// nextDescriptorToken reads exactly one token from the front of s and
// returns it along with whatever remains.
func nextDescriptorToken(s string) (token, rest string, err error) {
	if len(s) == 0 {
		return "", "", unimplemented("descriptor", "empty")
	}

	switch c := s[0]; c {
	case 'V', 'Z', 'B', 'C', 'S', 'I', 'J', 'D', 'F':
		return s[:1], s[1:], nil

	case '[':
		inner, rest, err := nextDescriptorToken(s[1:])
		if err != nil {
			return "", "", err
		}
		return "[" + inner, rest, nil

	case 'L':
		i := strings.IndexByte(s, ';')
		if i < 0 {
			return "", "", unimplemented("descriptor", "unterminated L...; token")
		}
		return s[:i+1], s[i+1:], nil

	case 'T':
		i := strings.IndexByte(s, ';')
		if i < 0 {
			return "", "", unimplemented("descriptor", "unterminated T...; token")
		}
		return s[:i+1], s[i+1:], nil

	case '(':
		i := strings.IndexByte(s, ')')
		if i < 0 {
			return "", "", unimplemented("descriptor", "unterminated (...) token")
		}
		return s[:i+1], s[i+1:], nil

	default:
		return "", "", unimplemented("descriptor", string(c))
	}
}

// methodDescriptorParts splits a method descriptor "(args)return" into
// its parenthesized argument-list token and its return-type token.
func methodDescriptorParts(descriptor string) (args, ret string, err error) {
	tokens, err := descriptorTokens(descriptor)
	if err != nil {
		return "", "", err
	}
	if len(tokens) != 2 || tokens[0][0] != '(' {
		return "", "", unimplemented("method descriptor", descriptor)
	}
	return tokens[0], tokens[1], nil
}

// argDescriptors splits a parenthesized "(args)" token (as produced by
// methodDescriptorParts, or the first element of descriptorTokens on a
// method descriptor) into the individual argument-type tokens.
func argDescriptors(parenToken string) ([]string, error) {
	if len(parenToken) < 2 || parenToken[0] != '(' || parenToken[len(parenToken)-1] != ')' {
		return nil, unimplemented("argument list", parenToken)
	}
	return descriptorTokens(parenToken[1 : len(parenToken)-1])
}

// prettyType renders a single descriptor token as a human-readable
// Java type, matching original_source's _pretty_type: primitives map
// to their Java keyword, object types drop the leading 'L' and
// trailing ';' and replace '/' with '.', arrays append "[]" per
// nesting level, and parenthesized tokens render as a comma-separated
// argument list.
func prettyType(token string) (string, error) {
	if token == "" {
		return "", unimplemented("descriptor", "empty token")
	}
	switch token[0] {
	case '(':
		args, err := argDescriptors(token)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(args))
		for i, a := range args {
			p, err := prettyType(a)
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		return "(" + strings.Join(parts, ",") + ")", nil
	case 'V':
		return "void", nil
	case 'Z':
		return "boolean", nil
	case 'C':
		return "char", nil
	case 'B':
		return "byte", nil
	case 'S':
		return "short", nil
	case 'I':
		return "int", nil
	case 'J':
		return "long", nil
	case 'D':
		return "double", nil
	case 'F':
		return "float", nil
	case 'T':
		return "generic " + token[1:len(token)-1], nil
	case 'L':
		return prettyClassName(token[1 : len(token)-1]), nil
	case '[':
		inner, err := prettyType(token[1:])
		if err != nil {
			return "", err
		}
		return inner + "[]", nil
	default:
		return "", unimplemented("descriptor", token)
	}
}

// prettyClassName rewrites an internal binary class name such as
// "java/lang/String" to its source form "java.lang.String".
func prettyClassName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

// prettyTypeSeq renders every token in a parenthesized argument-list
// token as pretty Java types, in order.
func prettyTypeSeq(parenToken string) ([]string, error) {
	args, err := argDescriptors(parenToken)
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
