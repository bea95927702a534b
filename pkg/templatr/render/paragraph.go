package render

import (
	"strings"

	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

// NewTextRun creates a run with default formatting. Line feeds become
// w:br breaks and tabs become w:tab, so multi-line values keep their shape.
func NewTextRun(text string) *xml.Run {
	var content []xml.RunContent
	var sb strings.Builder

	flush := func() {
		if sb.Len() > 0 {
			content = append(content, xml.NewText(sb.String()))
			sb.Reset()
		}
	}

	for _, r := range text {
		switch r {
		case '\n':
			flush()
			content = append(content, xml.NewRawXMLElement("br", "<w:br/>"))
		case '\t':
			flush()
			content = append(content, xml.NewRawXMLElement("tab", "<w:tab/>"))
		case '\r':
			// CRLF line endings; the \n emits the break
		default:
			sb.WriteRune(r)
		}
	}
	flush()

	if len(content) == 0 {
		content = append(content, xml.NewText(""))
	}
	return xml.NewRun(content...)
}

// NewParagraph creates a paragraph with one run holding text.
func NewParagraph(text string) *xml.Paragraph {
	return xml.NewParagraph(NewTextRun(text))
}

// NewImageParagraph creates a paragraph holding a single inline image.
func NewImageParagraph(img xml.InlineImage) *xml.Paragraph {
	return xml.NewParagraph(xml.NewInlineImageRun(img))
}
