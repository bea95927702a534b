package xml

import (
	"encoding/xml"
	"strings"
)

// Paragraph represents a w:p element.
type Paragraph struct {
	Name  xml.Name
	Attrs []xml.Attr
	// Content keeps runs and preserved elements (pPr, bookmarks, hyperlinks) in source order
	Content []ParagraphContent
}

// NewParagraph creates a paragraph holding the given content.
func NewParagraph(content ...ParagraphContent) *Paragraph {
	return &Paragraph{Name: wName("p"), Content: content}
}

func (p *Paragraph) isBodyElement() {}

func (p *Paragraph) encode(e *encoder) {
	name := nameOr(p.Name, "p")
	if len(p.Content) == 0 {
		e.empty(name, p.Attrs)
		return
	}
	e.start(name, p.Attrs)
	for _, c := range p.Content {
		c.encode(e)
	}
	e.end(name)
}

// Runs returns the runs that are direct children of the paragraph.
// Runs nested in hyperlinks or content controls are not included.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.Content {
		if r, ok := c.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// Text returns the concatenated text of the direct runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// ignorable elements do not make a paragraph visible on their own.
var ignorable = map[string]bool{
	"pPr":                   true,
	"rPr":                   true,
	"proofErr":              true,
	"bookmarkStart":         true,
	"bookmarkEnd":           true,
	"lastRenderedPageBreak": true,
}

// IsBlank reports whether the paragraph shows nothing: no text beyond
// whitespace and no drawings, fields or other content.
func (p *Paragraph) IsBlank() bool {
	for _, c := range p.Content {
		switch v := c.(type) {
		case *Run:
			if !v.isBlank() {
				return false
			}
		case *RawXMLElement:
			if !ignorable[v.Name.Local] {
				return false
			}
		}
	}
	return true
}

// Properties returns the w:pPr element, or nil.
func (p *Paragraph) Properties() *RawXMLElement {
	for _, c := range p.Content {
		if raw, ok := c.(*RawXMLElement); ok && raw.Is("pPr") {
			return raw
		}
	}
	return nil
}

// SetProperties replaces the w:pPr element, or inserts it first when absent.
// A nil props removes the existing properties.
func (p *Paragraph) SetProperties(props *RawXMLElement) {
	for i, c := range p.Content {
		if raw, ok := c.(*RawXMLElement); ok && raw.Is("pPr") {
			if props == nil {
				p.Content = append(p.Content[:i], p.Content[i+1:]...)
				return
			}
			p.Content[i] = props
			return
		}
	}
	if props == nil {
		return
	}
	p.Content = append([]ParagraphContent{props}, p.Content...)
}

// AppendRun adds a run at the end of the paragraph.
func (p *Paragraph) AppendRun(r *Run) {
	p.Content = append(p.Content, r)
}

// Clone returns a deep copy of the paragraph.
func (p *Paragraph) Clone() *Paragraph {
	out := &Paragraph{Name: p.Name, Attrs: cloneAttrs(p.Attrs)}
	for _, c := range p.Content {
		switch v := c.(type) {
		case *Run:
			out.Content = append(out.Content, v.Clone())
		case *RawXMLElement:
			out.Content = append(out.Content, v.Clone())
		default:
			out.Content = append(out.Content, c)
		}
	}
	return out
}
