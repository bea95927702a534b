package xml

import (
	"bytes"
	"encoding/xml"
)

// encoder writes elements with the prefixes they were parsed with.
// encoding/xml's Encoder rewrites prefixes into xmlns declarations, which
// Word rejects, so markup is written by hand.
type encoder struct {
	buf *bytes.Buffer
}

func writeName(buf *bytes.Buffer, n xml.Name) {
	if n.Space != "" {
		buf.WriteString(n.Space)
		buf.WriteByte(':')
	}
	buf.WriteString(n.Local)
}

func (e *encoder) start(n xml.Name, attrs []xml.Attr) {
	e.buf.WriteByte('<')
	writeName(e.buf, n)
	e.attrs(attrs)
	e.buf.WriteByte('>')
}

func (e *encoder) empty(n xml.Name, attrs []xml.Attr) {
	e.buf.WriteByte('<')
	writeName(e.buf, n)
	e.attrs(attrs)
	e.buf.WriteString("/>")
}

func (e *encoder) attrs(attrs []xml.Attr) {
	for _, a := range attrs {
		e.buf.WriteByte(' ')
		writeName(e.buf, a.Name)
		e.buf.WriteString(`="`)
		// EscapeText never fails on a bytes.Buffer
		_ = xml.EscapeText(e.buf, []byte(a.Value))
		e.buf.WriteByte('"')
	}
}

func (e *encoder) end(n xml.Name) {
	e.buf.WriteString("</")
	writeName(e.buf, n)
	e.buf.WriteByte('>')
}

func (e *encoder) text(s string) {
	_ = xml.EscapeText(e.buf, []byte(s))
}
