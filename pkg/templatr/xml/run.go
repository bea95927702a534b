package xml

import (
	"encoding/xml"
	"strings"
	"unicode"
	"unicode/utf8"
)

var spaceAttrName = xml.Name{Space: "xml", Local: "space"}

// Run represents a w:r element: a span of uniformly formatted content.
type Run struct {
	Name    xml.Name
	Attrs   []xml.Attr
	Content []RunContent
}

// NewRun creates a run holding the given content.
func NewRun(content ...RunContent) *Run {
	return &Run{Name: wName("r"), Content: content}
}

// NewTextRun creates a run with a single text node.
func NewTextRun(text string) *Run {
	return NewRun(NewText(text))
}

func (r *Run) isParagraphContent() {}

func (r *Run) encode(e *encoder) {
	name := nameOr(r.Name, "r")
	if len(r.Content) == 0 {
		e.empty(name, r.Attrs)
		return
	}
	e.start(name, r.Attrs)
	for _, c := range r.Content {
		c.encode(e)
	}
	e.end(name)
}

// Texts returns the text nodes of the run in order.
func (r *Run) Texts() []*Text {
	var texts []*Text
	for _, c := range r.Content {
		if t, ok := c.(*Text); ok {
			texts = append(texts, t)
		}
	}
	return texts
}

// Text returns the concatenated value of the run's text nodes.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, t := range r.Texts() {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// ReplaceAll replaces every occurrence of old in each text node and returns
// the number of replacements. Occurrences spanning two text nodes are not matched.
func (r *Run) ReplaceAll(old, replacement string) int {
	if old == "" {
		return 0
	}
	count := 0
	for _, t := range r.Texts() {
		n := strings.Count(t.Value, old)
		if n == 0 {
			continue
		}
		t.SetValue(strings.ReplaceAll(t.Value, old, replacement))
		count += n
	}
	return count
}

func (r *Run) isBlank() bool {
	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			if strings.TrimSpace(v.Value) != "" {
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

// Properties returns the w:rPr element, or nil.
func (r *Run) Properties() *RawXMLElement {
	for _, c := range r.Content {
		if raw, ok := c.(*RawXMLElement); ok && raw.Is("rPr") {
			return raw
		}
	}
	return nil
}

// SetProperties replaces the w:rPr element, or inserts it first when absent.
func (r *Run) SetProperties(props *RawXMLElement) {
	if props == nil {
		return
	}
	for i, c := range r.Content {
		if raw, ok := c.(*RawXMLElement); ok && raw.Is("rPr") {
			r.Content[i] = props
			return
		}
	}
	r.Content = append([]RunContent{props}, r.Content...)
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() *Run {
	out := &Run{Name: r.Name, Attrs: cloneAttrs(r.Attrs)}
	for _, c := range r.Content {
		switch v := c.(type) {
		case *Text:
			out.Content = append(out.Content, v.Clone())
		case *RawXMLElement:
			out.Content = append(out.Content, v.Clone())
		default:
			out.Content = append(out.Content, c)
		}
	}
	return out
}

// Text represents a w:t element.
type Text struct {
	Name  xml.Name
	Attrs []xml.Attr
	Value string
}

// NewText creates a text node with the given value.
func NewText(value string) *Text {
	t := &Text{Name: wName("t")}
	t.SetValue(value)
	return t
}

func (t *Text) isRunContent() {}

func (t *Text) encode(e *encoder) {
	name := nameOr(t.Name, "t")
	e.start(name, t.Attrs)
	e.text(t.Value)
	e.end(name)
}

// SetValue sets the text and marks it xml:space="preserve" when Word would
// otherwise drop leading or trailing whitespace.
func (t *Text) SetValue(value string) {
	t.Value = value
	if value == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(value)
	last, _ := utf8.DecodeLastRuneInString(value)
	if !unicode.IsSpace(first) && !unicode.IsSpace(last) {
		return
	}
	for i, a := range t.Attrs {
		if a.Name == spaceAttrName {
			t.Attrs[i].Value = "preserve"
			return
		}
	}
	t.Attrs = append(t.Attrs, xml.Attr{Name: spaceAttrName, Value: "preserve"})
}

// Clone returns a copy of the text node.
func (t *Text) Clone() *Text {
	return &Text{Name: t.Name, Attrs: cloneAttrs(t.Attrs), Value: t.Value}
}
