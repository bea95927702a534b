package xml

import (
	"encoding/xml"
	"strings"
)

// Table represents a w:tbl element.
type Table struct {
	Name  xml.Name
	Attrs []xml.Attr
	// Content keeps rows and preserved elements (tblPr, tblGrid) in source order
	Content []TableContent
}

// NewTable creates a table holding the given content.
func NewTable(content ...TableContent) *Table {
	return &Table{Name: wName("tbl"), Content: content}
}

func (t *Table) isBodyElement() {}

func (t *Table) encode(e *encoder) {
	name := nameOr(t.Name, "tbl")
	e.start(name, t.Attrs)
	for _, c := range t.Content {
		c.encode(e)
	}
	e.end(name)
}

// Rows returns the rows of the table.
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, c := range t.Content {
		if r, ok := c.(*Row); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// Text returns the text of all cells, one line per row, cells separated by tabs.
func (t *Table) Text() string {
	rows := t.Rows()
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Text())
	}
	return strings.Join(lines, "\n")
}

// Row represents a w:tr element.
type Row struct {
	Name    xml.Name
	Attrs   []xml.Attr
	Content []RowContent
}

// NewRow creates a table row holding the given content.
func NewRow(content ...RowContent) *Row {
	return &Row{Name: wName("tr"), Content: content}
}

func (r *Row) isTableContent() {}

func (r *Row) encode(e *encoder) {
	name := nameOr(r.Name, "tr")
	e.start(name, r.Attrs)
	for _, c := range r.Content {
		c.encode(e)
	}
	e.end(name)
}

// Cells returns the cells of the row.
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, c := range r.Content {
		if cell, ok := c.(*Cell); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

// Text returns the cell texts separated by tabs.
func (r *Row) Text() string {
	cells := r.Cells()
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts, c.Text())
	}
	return strings.Join(parts, "\t")
}

// Cell represents a w:tc element. A cell holds blocks, like a body.
type Cell struct {
	Name    xml.Name
	Attrs   []xml.Attr
	Content []BodyElement
}

// NewCell creates a table cell holding the given content.
func NewCell(content ...BodyElement) *Cell {
	return &Cell{Name: wName("tc"), Content: content}
}

func (c *Cell) isRowContent() {}

func (c *Cell) encode(e *encoder) {
	name := nameOr(c.Name, "tc")
	e.start(name, c.Attrs)
	for _, el := range c.Content {
		el.encode(e)
	}
	e.end(name)
}

// Text returns the text of the cell's blocks, one line per block.
func (c *Cell) Text() string {
	parts := make([]string, 0, len(c.Content))
	for _, el := range c.Content {
		if _, ok := el.(*RawXMLElement); ok {
			continue
		}
		parts = append(parts, BlockText(el))
	}
	return strings.Join(parts, "\n")
}
