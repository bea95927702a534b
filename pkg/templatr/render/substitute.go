package render

import "github.com/go-templatr/templatr/pkg/templatr/xml"

// SubstituteText replaces every occurrence of marker in the first paragraph
// that contains it and returns the number of replacements. Only that one
// paragraph is touched; calling again handles the next one.
func SubstituteText(body *xml.Body, marker, replacement string) int {
	i := Locate(body, marker)
	if i == NotFound {
		return 0
	}
	return ReplaceInParagraph(body.At(i).(*xml.Paragraph), marker, replacement)
}

// ClearMarker removes marker from the first paragraph that contains it.
func ClearMarker(body *xml.Body, marker string) int {
	return SubstituteText(body, marker, "")
}

// ReplaceInParagraph replaces marker in each text node of the paragraph's
// direct runs. Runs are never split or merged, so formatting is kept.
func ReplaceInParagraph(p *xml.Paragraph, marker, replacement string) int {
	if p == nil || marker == "" {
		return 0
	}
	count := 0
	for _, r := range p.Runs() {
		count += r.ReplaceAll(marker, replacement)
	}
	return count
}
