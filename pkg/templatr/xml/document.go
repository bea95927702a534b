package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Document represents one WordprocessingML part: the main document, a header or a footer.
//
// The bytes before the first block (XML declaration, root element with its
// namespace declarations, the w:body start tag) and after the last block are
// kept verbatim.
type Document struct {
	// Container is the element holding the blocks: w:body, w:hdr or w:ftr.
	Container xml.Name
	Body      *Body

	prefix []byte
	suffix []byte
}

// Bytes serializes the part.
func (d *Document) Bytes() ([]byte, error) {
	if d == nil || d.Body == nil {
		return nil, fmt.Errorf("failed to serialize document: no body")
	}
	var buf bytes.Buffer
	buf.Grow(len(d.prefix) + len(d.suffix) + 1024)
	buf.Write(d.prefix)
	e := &encoder{buf: &buf}
	for _, el := range d.Body.Elements {
		el.encode(e)
	}
	buf.Write(d.suffix)
	return buf.Bytes(), nil
}

// Body is the ordered block sequence of a part. Order matches top-to-bottom
// visual order. Blocks are addressed by index; Insert and Remove are plain
// vector operations.
type Body struct {
	Elements []BodyElement
}

// Len returns the number of blocks.
func (b *Body) Len() int {
	return len(b.Elements)
}

// At returns the block at index i, or nil when i is out of range.
func (b *Body) At(i int) BodyElement {
	if i < 0 || i >= len(b.Elements) {
		return nil
	}
	return b.Elements[i]
}

// Insert places el at index i, shifting later blocks down.
// An index past the end appends; a negative index is ignored.
func (b *Body) Insert(i int, el BodyElement) {
	if i < 0 || el == nil {
		return
	}
	if i >= len(b.Elements) {
		b.Elements = append(b.Elements, el)
		return
	}
	b.Elements = append(b.Elements, nil)
	copy(b.Elements[i+1:], b.Elements[i:])
	b.Elements[i] = el
}

// Append adds el after the last block.
func (b *Body) Append(el BodyElement) {
	b.Insert(len(b.Elements), el)
}

// Remove deletes and returns the block at index i, or returns nil when i is out of range.
func (b *Body) Remove(i int) BodyElement {
	if i < 0 || i >= len(b.Elements) {
		return nil
	}
	el := b.Elements[i]
	copy(b.Elements[i:], b.Elements[i+1:])
	b.Elements[len(b.Elements)-1] = nil
	b.Elements = b.Elements[:len(b.Elements)-1]
	return el
}

// Paragraphs returns the top-level paragraphs in order.
func (b *Body) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, el := range b.Elements {
		if p, ok := el.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Tables returns the top-level tables in order.
func (b *Body) Tables() []*Table {
	var tables []*Table
	for _, el := range b.Elements {
		if t, ok := el.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// BlockText returns the flattened text of a block: the paragraph text, the
// table text (recursing through cells), or "" for raw blocks.
func BlockText(el BodyElement) string {
	switch b := el.(type) {
	case *Paragraph:
		return b.Text()
	case *Table:
		return b.Text()
	}
	return ""
}
