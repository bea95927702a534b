package xml

import (
	"bytes"
	"encoding/xml"
)

// Namespace URIs used by the elements this package creates.
const (
	NamespaceMain          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceDrawingMain   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePicture       = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// mainPrefix is the prefix used for WordprocessingML elements built here.
const mainPrefix = "w"

// BodyElement represents any block that can appear in a document body or a table cell.
type BodyElement interface {
	isBodyElement()
	encode(e *encoder)
}

// ParagraphContent represents any element that can appear in a paragraph.
type ParagraphContent interface {
	isParagraphContent()
	encode(e *encoder)
}

// RunContent represents any element that can appear in a run.
type RunContent interface {
	isRunContent()
	encode(e *encoder)
}

// TableContent represents any element that can appear directly in a table.
type TableContent interface {
	isTableContent()
	encode(e *encoder)
}

// RowContent represents any element that can appear directly in a table row.
type RowContent interface {
	isRowContent()
	encode(e *encoder)
}

// RawXMLElement represents an element we preserve but don't parse.
// Data holds the complete element, start tag to end tag, as it appeared in the source.
type RawXMLElement struct {
	Name xml.Name
	Data []byte
}

// NewRawXMLElement creates a raw element from serialized markup.
func NewRawXMLElement(local string, data string) *RawXMLElement {
	return &RawXMLElement{
		Name: xml.Name{Space: mainPrefix, Local: local},
		Data: []byte(data),
	}
}

func (r *RawXMLElement) isBodyElement()      {}
func (r *RawXMLElement) isParagraphContent() {}
func (r *RawXMLElement) isRunContent()       {}
func (r *RawXMLElement) isTableContent()     {}
func (r *RawXMLElement) isRowContent()       {}

func (r *RawXMLElement) encode(e *encoder) {
	e.buf.Write(r.Data)
}

// Is reports whether the element has the given local name.
func (r *RawXMLElement) Is(local string) bool {
	return r != nil && r.Name.Local == local
}

// Clone returns a deep copy of the element.
func (r *RawXMLElement) Clone() *RawXMLElement {
	if r == nil {
		return nil
	}
	return &RawXMLElement{Name: r.Name, Data: bytes.Clone(r.Data)}
}

// String returns the raw markup.
func (r *RawXMLElement) String() string {
	return string(r.Data)
}

func wName(local string) xml.Name {
	return xml.Name{Space: mainPrefix, Local: local}
}

func nameOr(n xml.Name, local string) xml.Name {
	if n.Local == "" {
		return wName(local)
	}
	return n
}

func cloneAttrs(attrs []xml.Attr) []xml.Attr {
	if attrs == nil {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	return out
}
