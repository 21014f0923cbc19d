// Package attributed extracts the plain-text run from archived rich-text
// blobs (NSArchiver attributedBody payloads).
package attributed

import (
	"bytes"
	"strings"
)

var (
	stringMarker = []byte("NSString")
	lengthMarker = []byte{0x01, '+'}
)

// Text scans blob for the NSString marker, then the \x01+ sequence that
// precedes a one-byte length, and returns the UTF-8 run the length
// announces. Invalid byte sequences are replaced with U+FFFD. Returns the
// empty string when either marker is absent. Never errors.
func Text(blob []byte) string {
	if len(blob) == 0 {
		return ""
	}

	idx := bytes.Index(blob, stringMarker)
	if idx < 0 {
		return ""
	}

	searchStart := idx + len(stringMarker)
	rel := bytes.Index(blob[searchStart:], lengthMarker)
	if rel < 0 {
		return ""
	}

	lengthOffset := searchStart + rel + len(lengthMarker)
	if lengthOffset >= len(blob) {
		return ""
	}

	textLen := int(blob[lengthOffset])
	textStart := lengthOffset + 1
	textEnd := textStart + textLen
	if textEnd > len(blob) {
		textEnd = len(blob)
	}

	return strings.ToValidUTF8(string(blob[textStart:textEnd]), "�")
}
