package render

import (
	"strings"

	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

// NotFound is returned by Locate when no block contains the marker.
const NotFound = -1

// Locate returns the index of the first top-level paragraph whose text
// contains marker, or NotFound. Tables and preserved blocks are skipped.
// An empty marker never matches.
func Locate(body *xml.Body, marker string) int {
	if body == nil || marker == "" {
		return NotFound
	}
	for i, el := range body.Elements {
		p, ok := el.(*xml.Paragraph)
		if !ok {
			continue
		}
		if strings.Contains(p.Text(), marker) {
			return i
		}
	}
	return NotFound
}

// Contains reports whether any block of body, tables included, holds marker
// in its text. It is used for diagnostics; substitution only acts on what
// Locate finds.
func Contains(body *xml.Body, marker string) bool {
	if body == nil || marker == "" {
		return false
	}
	for _, el := range body.Elements {
		if strings.Contains(xml.BlockText(el), marker) {
			return true
		}
	}
	return false
}
