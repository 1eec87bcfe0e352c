// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"strings"
)

// The Unicode "Control Pictures" block mirrors the first 32 codepoints of
// "Basic Latin", so a C0 control character maps to its picture by adding
// this offset.
const unicodeControlPicturesStart = rune(0x2400)

const del = rune(0x7f)
const delPicture = rune(0x2421)

// ReplaceControlChars translates 7-bit C0 control characters in the given
// string into their symbols from the Unicode "Control Pictures" block, so
// that untrusted data can be printed to a terminal without affecting the
// terminal's state machine. Newline, carriage return, and horizontal tab
// are left alone since they commonly appear in human-oriented text.
//
// This is only needed for arbitrary text rendered directly in the UI, such
// as diagnostic messages. Machine-readable output like JSON already escapes
// control characters during quoting.
func ReplaceControlChars(input string) string {
	if !strings.ContainsFunc(input, isFilteredControlChar) {
		return input
	}

	var buf strings.Builder
	for _, r := range input {
		if isFilteredControlChar(r) {
			r = controlPicture(r)
		}
		_, _ = buf.WriteRune(r)
	}
	return buf.String()
}

func isFilteredControlChar(r rune) bool {
	// Space (0x20) is the first non-control character
	return (r < ' ' && r != '\r' && r != '\n' && r != '\t') || r == del
}

func controlPicture(ctrl rune) rune {
	if ctrl < ' ' {
		return ctrl + unicodeControlPicturesStart
	}
	if ctrl == del {
		return delPicture
	}
	return ctrl
}
