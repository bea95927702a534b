package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// parser builds the content tree from raw tokens. RawToken keeps the source
// prefixes, and InputOffset lets unknown elements be sliced out of the
// source verbatim.
type parser struct {
	d   *xml.Decoder
	src []byte
}

// ParseDocument parses a main document, header or footer part.
func ParseDocument(src []byte) (*Document, error) {
	p := &parser{
		d:   xml.NewDecoder(bytes.NewReader(src)),
		src: src,
	}

	container, err := p.findContainer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	contentStart := p.d.InputOffset()
	selfClosing := bytes.HasSuffix(src[:contentStart], []byte("/>"))

	doc := &Document{
		Container: container.Name,
		Body:      &Body{},
	}

	for {
		off := p.d.InputOffset()
		tok, err := p.d.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el, err := p.block(t, off)
			if err != nil {
				return nil, fmt.Errorf("failed to parse document: %w", err)
			}
			doc.Body.Elements = append(doc.Body.Elements, el)
		case xml.EndElement:
			if selfClosing {
				// <w:body/> has no room for blocks; reopen it
				var closing bytes.Buffer
				closing.WriteString("</")
				writeName(&closing, container.Name)
				closing.WriteByte('>')
				doc.prefix = append(bytes.Clone(src[:contentStart-2]), '>')
				doc.suffix = append(closing.Bytes(), src[contentStart:]...)
			} else {
				doc.prefix = bytes.Clone(src[:contentStart])
				doc.suffix = bytes.Clone(src[off:])
			}
			return doc, nil
		}
	}
}

// findContainer advances to the start tag of the element holding the blocks.
func (p *parser) findContainer() (xml.StartElement, error) {
	root := true
	for {
		tok, err := p.d.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, errors.New("no body element")
			}
			return xml.StartElement{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if root {
			root = false
			if se.Name.Local == "hdr" || se.Name.Local == "ftr" {
				return se, nil
			}
			continue
		}
		if se.Name.Local == "body" {
			return se, nil
		}
	}
}

func (p *parser) block(start xml.StartElement, off int64) (BodyElement, error) {
	switch start.Name.Local {
	case "p":
		return p.paragraph(start)
	case "tbl":
		return p.table(start)
	default:
		return p.raw(start, off)
	}
}

func (p *parser) paragraph(start xml.StartElement) (*Paragraph, error) {
	para := &Paragraph{Name: start.Name, Attrs: cloneAttrs(start.Attr)}
	for {
		off := p.d.InputOffset()
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "r" {
				run, err := p.run(t)
				if err != nil {
					return nil, err
				}
				para.Content = append(para.Content, run)
				continue
			}
			raw, err := p.raw(t, off)
			if err != nil {
				return nil, err
			}
			para.Content = append(para.Content, raw)
		case xml.EndElement:
			return para, nil
		}
	}
}

func (p *parser) run(start xml.StartElement) (*Run, error) {
	run := &Run{Name: start.Name, Attrs: cloneAttrs(start.Attr)}
	for {
		off := p.d.InputOffset()
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				text, err := p.text(t)
				if err != nil {
					return nil, err
				}
				run.Content = append(run.Content, text)
				continue
			}
			raw, err := p.raw(t, off)
			if err != nil {
				return nil, err
			}
			run.Content = append(run.Content, raw)
		case xml.EndElement:
			return run, nil
		}
	}
}

func (p *parser) text(start xml.StartElement) (*Text, error) {
	text := &Text{Name: start.Name, Attrs: cloneAttrs(start.Attr)}
	var value bytes.Buffer
	depth := 1
	for depth > 0 {
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				value.Write(t)
			}
		}
	}
	text.Value = value.String()
	return text, nil
}

func (p *parser) table(start xml.StartElement) (*Table, error) {
	table := &Table{Name: start.Name, Attrs: cloneAttrs(start.Attr)}
	for {
		off := p.d.InputOffset()
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				row, err := p.row(t)
				if err != nil {
					return nil, err
				}
				table.Content = append(table.Content, row)
				continue
			}
			raw, err := p.raw(t, off)
			if err != nil {
				return nil, err
			}
			table.Content = append(table.Content, raw)
		case xml.EndElement:
			return table, nil
		}
	}
}

func (p *parser) row(start xml.StartElement) (*Row, error) {
	row := &Row{Name: start.Name, Attrs: cloneAttrs(start.Attr)}
	for {
		off := p.d.InputOffset()
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := p.cell(t)
				if err != nil {
					return nil, err
				}
				row.Content = append(row.Content, cell)
				continue
			}
			raw, err := p.raw(t, off)
			if err != nil {
				return nil, err
			}
			row.Content = append(row.Content, raw)
		case xml.EndElement:
			return row, nil
		}
	}
}

func (p *parser) cell(start xml.StartElement) (*Cell, error) {
	cell := &Cell{Name: start.Name, Attrs: cloneAttrs(start.Attr)}
	for {
		off := p.d.InputOffset()
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el, err := p.block(t, off)
			if err != nil {
				return nil, err
			}
			cell.Content = append(cell.Content, el)
		case xml.EndElement:
			return cell, nil
		}
	}
}

// raw consumes the element started at off and returns its source bytes.
func (p *parser) raw(start xml.StartElement, off int64) (*RawXMLElement, error) {
	depth := 1
	for depth > 0 {
		tok, err := p.d.RawToken()
		if err != nil {
			return nil, err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	end := p.d.InputOffset()
	return &RawXMLElement{
		Name: start.Name,
		Data: bytes.Clone(p.src[off:end]),
	}, nil
}
