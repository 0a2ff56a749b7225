// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Package textnorm canonicalises free-text fields before they are stored or compared.
//
// # Usage
//
// Institution names are unique, so two spellings that render identically
// ("Université" typed with a combining accent vs. a precomposed one, or a
// stray double space) must collapse to the same stored value.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name converts s into its canonical stored form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes accented chars: e + combining acute → é).
// 2. Replaces control and space characters with a plain space.
// 3. Collapses runs of spaces and trims both ends.
func Name(s string) string {
	s = norm.NFC.String(s)

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// Token trims s and strips every interior space, for identifier values pasted from documents.
func Token(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, norm.NFC.String(s))
}
