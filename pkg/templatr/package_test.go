package templatr

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenPackage(t *testing.T) {
	extra := map[string]string{
		"word/header1.xml": headerXML(para("head")),
		"word/footer2.xml": `<w:ftr ` + testNS + `>` + para("foot") + `</w:ftr>`,
		"word/styles.xml":  `<w:styles ` + testNS + `/>`,
	}
	pkg := openTestPackage(t, createTestDocx(t, para("body"), extra))

	if pkg.Main.Name != "word/document.xml" {
		t.Errorf("Unexpected main part %s", pkg.Main.Name)
	}
	if len(pkg.HeaderFooters) != 2 {
		t.Fatalf("Expected 2 header/footer parts, got %d", len(pkg.HeaderFooters))
	}
	if pkg.HeaderFooters[0].Name != "word/footer2.xml" || pkg.HeaderFooters[1].Name != "word/header1.xml" {
		t.Errorf("Expected parts in name order, got %s %s", pkg.HeaderFooters[0].Name, pkg.HeaderFooters[1].Name)
	}
	if got := pkg.HeaderFooters[1].Doc.Body.Paragraphs()[0].Text(); got != "head" {
		t.Errorf("Expected header text, got %q", got)
	}
	if len(pkg.Relationships().Relationship) != 1 {
		t.Errorf("Expected existing relationships loaded")
	}
	if !pkg.ContentTypes().HasDefault("XML") {
		t.Errorf("Expected content types loaded")
	}
}

func TestOpenPackageErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "Not a zip", data: []byte("plain text")},
		{name: "Missing document part", data: zipParts(t, map[string]string{"word/styles.xml": "<w:styles/>"})},
		{name: "Document without body", data: zipParts(t, map[string]string{
			"word/document.xml": `<w:document ` + testNS + `></w:document>`,
		})},
		{name: "Bad entity", data: zipParts(t, map[string]string{
			"word/document.xml": documentXML(`<w:p><w:r><w:t>a &bogus; b</w:t></w:r></w:p>`),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenPackage(bytes.NewReader(tt.data), int64(len(tt.data)))
			if !IsDocumentError(err) {
				t.Errorf("Expected DocumentError, got %v", err)
			}
		})
	}
}

func TestPackageSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "pic.png", 4, 2)
	extra := map[string]string{"word/styles.xml": `<w:styles ` + testNS + `/>`}
	pkg := openTestPackage(t, createTestDocx(t, para("{{pic}}")+para("{{x}}"), extra))

	if _, err := testDriver(testConfig()).Run(pkg, []Directive{Image("{{pic}}", img), Text("{{x}}", "done")}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	path := filepath.Join(dir, "out.docx")
	if err := pkg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	reloaded, err := OpenPackageFile(path)
	if err != nil {
		t.Fatalf("OpenPackageFile failed: %v", err)
	}
	if got := reloaded.Body().Paragraphs()[1].Text(); got != "done" {
		t.Errorf("Expected filled text, got %q", got)
	}
	if !reloaded.Reader().HasPart("word/media/templatr_image1.png") {
		t.Errorf("Expected media part in saved package")
	}
	if !reloaded.Reader().HasPart("word/styles.xml") {
		t.Errorf("Expected untouched parts copied")
	}
	if len(reloaded.Relationships().Relationship) != 2 {
		t.Errorf("Expected image relationship saved")
	}

	// new drawings continue after the saved one
	if id := reloaded.NextDrawingID(); id != 2 {
		t.Errorf("Expected next drawing id 2, got %d", id)
	}
}

func TestPackageWritesMissingRelationships(t *testing.T) {
	dir := t.TempDir()
	img := writeTestPNG(t, dir, "pic.png", 2, 2)

	// no document relationships and no content types
	pkg := openTestPackage(t, zipParts(t, map[string]string{
		"word/document.xml": documentXML(para("x")),
	}))

	if _, err := pkg.AddImage(img, testConfig()); err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}

	var buf bytes.Buffer
	n, err := pkg.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}

	rels := readPart(t, buf.Bytes(), "word/_rels/document.xml.rels")
	if !strings.HasPrefix(rels, `<?xml`) || !strings.Contains(rels, `Id="rId1"`) || !strings.Contains(rels, "templatr_image1.png") {
		t.Errorf("Unexpected relationships %s", rels)
	}
	types := readPart(t, buf.Bytes(), "[Content_Types].xml")
	if !strings.Contains(types, `Extension="png"`) || !strings.Contains(types, contentTypesNamespace) {
		t.Errorf("Unexpected content types %s", types)
	}
}

func TestSaveFileError(t *testing.T) {
	pkg := openTestPackage(t, createTestDocx(t, para("x"), nil))
	path := filepath.Join(t.TempDir(), "missing", "out.docx")

	err := pkg.SaveFile(path)
	if !IsDocumentError(err) {
		t.Fatalf("Expected DocumentError, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("Expected no file written")
	}
}

func TestPackageDrawingIDs(t *testing.T) {
	drawing := func(id string) string {
		return `<w:p><w:r><w:drawing><wp:inline xmlns:wp="urn:wp"><wp:docPr id="` + id + `" name="x"/></wp:inline></w:drawing></w:r></w:p>`
	}

	tests := []struct {
		name string
		ids  []string
		want int
	}{
		{name: "No drawings", ids: nil, want: 1},
		{name: "After highest id", ids: []string{"3", "7", "5"}, want: 8},
		{name: "Largest unsigned id ignored", ids: []string{"7", "4294967295"}, want: 8},
		{name: "Out of range id ignored", ids: []string{"7", "9223372036854775807"}, want: 8},
		{name: "Last id with a successor", ids: []string{"4294967294"}, want: 4294967295},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body string
			for _, id := range tt.ids {
				body += drawing(id)
			}
			pkg := openTestPackage(t, createTestDocx(t, body, nil))
			if got := pkg.NextDrawingID(); got != tt.want {
				t.Errorf("Expected next drawing id %d, got %d", tt.want, got)
			}
		})
	}
}
