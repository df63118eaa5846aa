// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package detect classifies files as text or binary with a small decode
// probe. The probe is a heuristic, not a content-type authority: a binary
// file whose first bytes happen to be valid UTF-8 is classified as text.
package detect

import (
	"io"
	"os"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// probeSize is how many leading bytes the probe inspects.
const probeSize = 16

// 🔍 IsBinary reports whether the file at path looks binary: true when its
// first 16 bytes do not decode as UTF-8 text. The probe opens its own
// handle; callers reopen the file for the actual copy.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Errorf("opening file for probe: %w", err)
	}
	defer f.Close()

	buf := make([]byte, probeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, errors.Errorf("reading probe bytes: %w", err)
	}

	ok, _ := ValidTextPrefix(buf[:n])
	return !ok, nil
}

// 🔍 ValidTextPrefix reports whether b is valid UTF-8, allowing one
// incomplete rune at the end (a multi-byte sequence cut off by a read
// window). When ok, tail holds the incomplete trailing bytes, if any;
// tail aliases b and must be copied if retained.
func ValidTextPrefix(b []byte) (ok bool, tail []byte) {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			if incompleteRune(b) {
				return true, b
			}
			return false, nil
		}
		b = b[size:]
	}
	return true, nil
}

// incompleteRune reports whether b is a prefix of a single valid multi-byte
// rune that was truncated.
func incompleteRune(b []byte) bool {
	if len(b) == 0 || len(b) >= utf8.UTFMax {
		return false
	}

	var want int
	switch {
	case b[0]&0xE0 == 0xC0:
		want = 2
	case b[0]&0xF0 == 0xE0:
		want = 3
	case b[0]&0xF8 == 0xF0:
		want = 4
	default:
		return false
	}
	if len(b) >= want {
		return false
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
