package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

// Table layout constants, in twentieths of a point.
const (
	tableTotalWidth = 9000
	minColumnWidth  = 500
)

var (
	// ErrMissingColumn is wrapped by MissingColumnError.
	ErrMissingColumn = errors.New("row is missing a column")
	// ErrNoColumns is returned when a table has no columns to emit.
	ErrNoColumns = errors.New("table has no columns")
)

// Column is one table column: the key rows are looked up by and the header text.
type Column struct {
	Key    string
	Header string
}

// TableSpec describes a table: its columns in display order and the rows,
// each mapping a column key to the cell text.
type TableSpec struct {
	Columns []Column
	Rows    []map[string]string
}

// NewTableSpec creates a table spec with columns sorted by key. Column maps
// in the data file carry no order, so key order is the one stable choice.
func NewTableSpec(columns []Column, rows []map[string]string) TableSpec {
	sorted := make([]Column, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return TableSpec{Columns: sorted, Rows: rows}
}

// Headers returns the header texts in column order.
func (s TableSpec) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Validate checks that every row has a value for every column.
func (s TableSpec) Validate() error {
	if len(s.Columns) == 0 {
		return ErrNoColumns
	}
	for i, row := range s.Rows {
		for _, c := range s.Columns {
			if _, ok := row[c.Key]; !ok {
				return &MissingColumnError{Row: i, Key: c.Key}
			}
		}
	}
	return nil
}

// MissingColumnError reports a row without a value for one of the columns.
type MissingColumnError struct {
	// Row is the zero-based index among the data rows
	Row int
	Key string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("row %d is missing column %q", e.Row, e.Key)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// TableOptions controls the look of built tables.
type TableOptions struct {
	// Style is a table style id defined in the template, e.g. "TableGrid".
	// Empty means direct single borders only.
	Style string
}

// NewTable builds a table with a header row followed by one row per data row.
// Cells appear in column order.
func NewTable(spec TableSpec, opts TableOptions) (*xml.Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	width := tableTotalWidth / len(spec.Columns)
	if width < minColumnWidth {
		width = minColumnWidth
	}

	table := xml.NewTable(
		xml.NewRawXMLElement("tblPr", tableProperties(opts)),
		xml.NewRawXMLElement("tblGrid", tableGrid(len(spec.Columns), width)),
	)

	header := xml.NewRow(xml.NewRawXMLElement("trPr", `<w:trPr><w:tblHeader/></w:trPr>`))
	for _, c := range spec.Columns {
		run := NewTextRun(c.Header)
		run.SetProperties(xml.NewRawXMLElement("rPr", `<w:rPr><w:b/></w:rPr>`))
		header.Content = append(header.Content, newCell(xml.NewParagraph(run), width))
	}
	table.Content = append(table.Content, header)

	for _, values := range spec.Rows {
		row := xml.NewRow()
		for _, c := range spec.Columns {
			row.Content = append(row.Content, newCell(NewParagraph(values[c.Key]), width))
		}
		table.Content = append(table.Content, row)
	}

	return table, nil
}

func newCell(p *xml.Paragraph, width int) *xml.Cell {
	return xml.NewCell(
		xml.NewRawXMLElement("tcPr", fmt.Sprintf(`<w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, width)),
		p,
	)
}

func tableProperties(opts TableOptions) string {
	var sb strings.Builder
	sb.WriteString("<w:tblPr>")
	if opts.Style != "" {
		sb.WriteString(`<w:tblStyle w:val="`)
		sb.WriteString(escapeAttr(opts.Style))
		sb.WriteString(`"/>`)
	}
	sb.WriteString(`<w:tblW w:w="0" w:type="auto"/>`)
	sb.WriteString("<w:tblBorders>")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(&sb, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="auto"/>`, side)
	}
	sb.WriteString("</w:tblBorders>")
	sb.WriteString(`<w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/>`)
	sb.WriteString("</w:tblPr>")
	return sb.String()
}

func tableGrid(columns, width int) string {
	var sb strings.Builder
	sb.WriteString("<w:tblGrid>")
	for i := 0; i < columns; i++ {
		fmt.Fprintf(&sb, `<w:gridCol w:w="%d"/>`, width)
	}
	sb.WriteString("</w:tblGrid>")
	return sb.String()
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;", `'`, "&apos;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
