package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

func newBody(blocks ...xml.BodyElement) *xml.Body {
	return &xml.Body{Elements: blocks}
}

func TestLocate(t *testing.T) {
	table, err := NewTable(NewTableSpec([]Column{{Key: "a", Header: "{{m}}"}}, nil), TableOptions{})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	body := newBody(
		NewParagraph("intro"),
		table,
		xml.NewRawXMLElement("sdt", "<w:sdt/>"),
		NewParagraph("Dear {{m}},"),
		NewParagraph("{{m}} again"),
	)

	tests := []struct {
		name     string
		marker   string
		expected int
	}{
		{name: "First paragraph match wins, tables skipped", marker: "{{m}}", expected: 3},
		{name: "Substring of literal text", marker: "intro", expected: 0},
		{name: "Absent marker", marker: "{{x}}", expected: NotFound},
		{name: "Empty marker", marker: "", expected: NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Locate(body, tt.marker); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}

	if Locate(nil, "{{m}}") != NotFound {
		t.Errorf("Expected NotFound for nil body")
	}
	if !Contains(newBody(table), "{{m}}") {
		t.Errorf("Expected Contains to see table text")
	}
}

func TestLocateSplitMarker(t *testing.T) {
	// Word split the marker over two runs; the flattened text still matches
	p := xml.NewParagraph(xml.NewTextRun("{{na"), xml.NewTextRun("me}}"))
	body := newBody(p)

	if got := Locate(body, "{{name}}"); got != 0 {
		t.Fatalf("Expected paragraph to be located, got %d", got)
	}
	if got := SubstituteText(body, "{{name}}", "Ann"); got != 0 {
		t.Errorf("Expected no replacement across runs, got %d", got)
	}
	if p.Text() != "{{name}}" {
		t.Errorf("Expected paragraph untouched, got %q", p.Text())
	}
}

func TestSubstituteText(t *testing.T) {
	tests := []struct {
		name        string
		paragraphs  []string
		marker      string
		replacement string
		count       int
		expected    []string
	}{
		{
			name:        "Only the first matching paragraph changes",
			paragraphs:  []string{"Hi {{n}}", "Bye {{n}}"},
			marker:      "{{n}}",
			replacement: "Ann",
			count:       1,
			expected:    []string{"Hi Ann", "Bye {{n}}"},
		},
		{
			name:        "All occurrences in the paragraph",
			paragraphs:  []string{"{{n}} and {{n}}"},
			marker:      "{{n}}",
			replacement: "x",
			count:       2,
			expected:    []string{"x and x"},
		},
		{
			name:        "Not found",
			paragraphs:  []string{"plain"},
			marker:      "{{n}}",
			replacement: "x",
			count:       0,
			expected:    []string{"plain"},
		},
		{
			name:        "Replacement containing the marker",
			paragraphs:  []string{"{{n}}"},
			marker:      "{{n}}",
			replacement: "[{{n}}]",
			count:       1,
			expected:    []string{"[{{n}}]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newBody()
			for _, text := range tt.paragraphs {
				body.Append(NewParagraph(text))
			}
			if got := SubstituteText(body, tt.marker, tt.replacement); got != tt.count {
				t.Errorf("Expected %d replacements, got %d", tt.count, got)
			}
			for i, want := range tt.expected {
				if got := xml.BlockText(body.At(i)); got != want {
					t.Errorf("Paragraph %d: expected %q, got %q", i, want, got)
				}
			}
		})
	}
}

func TestSubstituteTextKeepsRunFormatting(t *testing.T) {
	run := xml.NewTextRun("{{n}}")
	run.SetProperties(xml.NewRawXMLElement("rPr", `<w:rPr><w:i/></w:rPr>`))
	body := newBody(xml.NewParagraph(run))

	SubstituteText(body, "{{n}}", "Ann")

	if run.Properties() == nil || run.Text() != "Ann" {
		t.Errorf("Expected formatted run with replaced text, got %q", run.Text())
	}
}

func TestClearMarker(t *testing.T) {
	body := newBody(NewParagraph("Items: {{list}}"))
	if got := ClearMarker(body, "{{list}}"); got != 1 {
		t.Errorf("Expected 1 replacement, got %d", got)
	}
	if got := xml.BlockText(body.At(0)); got != "Items: " {
		t.Errorf("Expected marker removed, got %q", got)
	}
}

func TestNewTextRun(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "Plain", text: "abc", expected: `<w:t>abc</w:t>`},
		{name: "Empty", text: "", expected: `<w:t></w:t>`},
		{name: "Line break", text: "a\nb", expected: `<w:t>a</w:t><w:br/><w:t>b</w:t>`},
		{name: "CRLF", text: "a\r\nb", expected: `<w:t>a</w:t><w:br/><w:t>b</w:t>`},
		{name: "Tab", text: "a\tb", expected: `<w:t>a</w:t><w:tab/><w:t>b</w:t>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeBlock(t, NewParagraph(tt.text))
			want := `<w:p><w:r>` + tt.expected + `</w:r></w:p>`
			if got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}
}

func TestNewTableColumnOrder(t *testing.T) {
	rows := []map[string]string{{"a": "1", "b": "2"}}

	first, err := NewTable(NewTableSpec([]Column{{Key: "b", Header: "B"}, {Key: "a", Header: "A"}}, rows), TableOptions{})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	second, err := NewTable(NewTableSpec([]Column{{Key: "a", Header: "A"}, {Key: "b", Header: "B"}}, rows), TableOptions{})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	if got := first.Text(); got != "A\tB\n1\t2" {
		t.Errorf("Expected header [A, B], got %q", got)
	}
	if encodeBlock(t, first) != encodeBlock(t, second) {
		t.Errorf("Expected identical output for shuffled column declaration order")
	}
}

func TestNewTableStructure(t *testing.T) {
	spec := NewTableSpec(
		[]Column{{Key: "name", Header: "Name"}, {Key: "qty", Header: "Qty"}},
		[]map[string]string{
			{"name": "apple", "qty": "3"},
			{"name": "pear", "qty": "5", "extra": "ignored"},
		},
	)
	table, err := NewTable(spec, TableOptions{Style: "TableGrid"})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	rows := table.Rows()
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if len(r.Cells()) != 2 {
			t.Errorf("Row %d: expected 2 cells, got %d", i, len(r.Cells()))
		}
	}

	out := encodeBlock(t, table)
	for _, want := range []string{
		`<w:tblStyle w:val="TableGrid"/>`,
		`<w:gridCol w:w="4500"/>`,
		`<w:tblHeader/>`,
		`<w:rPr><w:b/></w:rPr><w:t>Name</w:t>`,
		`<w:tcW w:w="4500" w:type="dxa"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %s", want)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("Expected keys outside the columns to be ignored")
	}
}

func TestNewTableErrors(t *testing.T) {
	t.Run("Missing key", func(t *testing.T) {
		spec := NewTableSpec(
			[]Column{{Key: "a", Header: "A"}, {Key: "b", Header: "B"}},
			[]map[string]string{{"a": "1", "b": "2"}, {"a": "3"}},
		)
		_, err := NewTable(spec, TableOptions{})
		if !errors.Is(err, ErrMissingColumn) {
			t.Fatalf("Expected ErrMissingColumn, got %v", err)
		}
		var mce *MissingColumnError
		if !errors.As(err, &mce) {
			t.Fatalf("Expected MissingColumnError, got %T", err)
		}
		if mce.Row != 1 || mce.Key != "b" {
			t.Errorf("Expected row 1 key b, got row %d key %q", mce.Row, mce.Key)
		}
	})

	t.Run("No columns", func(t *testing.T) {
		_, err := NewTable(NewTableSpec(nil, nil), TableOptions{})
		if !errors.Is(err, ErrNoColumns) {
			t.Errorf("Expected ErrNoColumns, got %v", err)
		}
	})
}

func TestNewImageParagraph(t *testing.T) {
	p := NewImageParagraph(xml.InlineImage{RelID: "rId9", DocPrID: 1, Name: "a.png", CX: 10, CY: 20})
	out := encodeBlock(t, p)
	if !strings.HasPrefix(out, "<w:p><w:r><w:drawing>") || !strings.Contains(out, `r:embed="rId9"`) {
		t.Errorf("Unexpected image paragraph: %s", out)
	}
}

// encodeBlock serializes a single block through a minimal document.
func encodeBlock(t *testing.T, el xml.BodyElement) string {
	t.Helper()
	doc, err := xml.ParseDocument([]byte(`<w:document xmlns:w="w"><w:body></w:body></w:document>`))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	doc.Body.Append(el)
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	out = bytes.TrimPrefix(out, []byte(`<w:document xmlns:w="w"><w:body>`))
	out = bytes.TrimSuffix(out, []byte(`</w:body></w:document>`))
	return string(out)
}
