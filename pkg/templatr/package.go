package templatr

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"

	"fortio.org/safecast"

	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

var (
	headerFooterPattern = regexp.MustCompile(`^word/(header|footer)\d+\.xml$`)
	docPrIDPattern      = regexp.MustCompile(`docPr\s[^>]*?\bid="(\d+)"`)
)

// Part is one parsed WordprocessingML part of a package.
type Part struct {
	Name string
	Doc  *xml.Document
}

// Package is an opened DOCX file: the parsed main document, header and
// footer parts, and the media added while filling. Parts not listed here are
// copied unchanged when the package is written.
type Package struct {
	reader *DocxReader

	// Main is word/document.xml
	Main *Part
	// HeaderFooters holds word/headerN.xml and word/footerN.xml in name order
	HeaderFooters []*Part

	rels         *Relationships
	contentTypes *ContentTypes
	media        []mediaPart
	mediaNames   map[string]bool

	relsDirty   bool
	typesDirty  bool
	nextDocPrID int
}

type mediaPart struct {
	name string
	data []byte
}

// OpenPackage reads a DOCX package.
func OpenPackage(r io.ReaderAt, size int64) (*Package, error) {
	pkg, err := openPackage(r, size)
	if err != nil {
		return nil, NewDocumentError("load", "", err)
	}
	return pkg, nil
}

// OpenPackageFile reads a DOCX package from disk.
func OpenPackageFile(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("load", path, err)
	}
	pkg, err := openPackage(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, NewDocumentError("load", path, err)
	}
	return pkg, nil
}

func openPackage(r io.ReaderAt, size int64) (*Package, error) {
	reader, err := NewDocxReader(r, size)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		reader:      reader,
		mediaNames:  make(map[string]bool),
		nextDocPrID: 1,
	}

	pkg.Main, err = pkg.parsePart(mainDocumentPart)
	if err != nil {
		return nil, err
	}

	for _, name := range reader.ListParts() {
		if !headerFooterPattern.MatchString(name) {
			continue
		}
		part, err := pkg.parsePart(name)
		if err != nil {
			return nil, err
		}
		pkg.HeaderFooters = append(pkg.HeaderFooters, part)
	}

	pkg.rels, err = reader.GetRelationships(mainDocumentPart)
	if err != nil {
		return nil, err
	}

	if reader.HasPart(contentTypesPart) {
		pkg.contentTypes, err = reader.GetContentTypes()
		if err != nil {
			return nil, err
		}
	} else {
		pkg.contentTypes = &ContentTypes{Namespace: contentTypesNamespace}
		pkg.typesDirty = true
	}

	return pkg, nil
}

func (p *Package) parsePart(name string) (*Part, error) {
	src, err := p.reader.GetPart(name)
	if err != nil {
		return nil, err
	}
	doc, err := xml.ParseDocument(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	p.trackDocPrIDs(src)
	return &Part{Name: name, Doc: doc}, nil
}

// trackDocPrIDs keeps nextDocPrID above every drawing id already in use.
// Ids are xsd:unsignedInt; an id with no successor in that range is ignored.
func (p *Package) trackDocPrIDs(src []byte) {
	for _, m := range docPrIDPattern.FindAllSubmatch(src, -1) {
		id, err := strconv.ParseUint(string(m[1]), 10, 32)
		if err != nil || id >= math.MaxUint32 {
			continue
		}
		next, err := safecast.Conv[int](id + 1)
		if err != nil {
			continue
		}
		if next > p.nextDocPrID {
			p.nextDocPrID = next
		}
	}
}

// Body returns the block arena of the main document.
func (p *Package) Body() *xml.Body {
	return p.Main.Doc.Body
}

// Reader returns the underlying archive reader.
func (p *Package) Reader() *DocxReader {
	return p.reader
}

// Relationships returns the relationships of the main document.
func (p *Package) Relationships() *Relationships {
	return p.rels
}

// ContentTypes returns the package content types.
func (p *Package) ContentTypes() *ContentTypes {
	return p.contentTypes
}

// AddMedia stores data as a new part under word/media and links it from the
// main document. It returns the relationship id and the part name.
func (p *Package) AddMedia(ext, contentType, relType string, data []byte) (string, string) {
	name := p.nextMediaName(ext)
	p.media = append(p.media, mediaPart{name: name, data: data})
	p.mediaNames[name] = true

	// targets are relative to word/
	relID := p.rels.Add(relType, name[len("word/"):])
	p.relsDirty = true

	if p.contentTypes.AddDefault(ext, contentType) {
		p.typesDirty = true
	}
	return relID, name
}

func (p *Package) nextMediaName(ext string) string {
	for n := len(p.media) + 1; ; n++ {
		name := fmt.Sprintf("word/media/templatr_image%d.%s", n, ext)
		if !p.reader.HasPart(name) && !p.mediaNames[name] {
			return name
		}
	}
}

// NextDrawingID returns a drawing id not used anywhere in the package.
func (p *Package) NextDrawingID() int {
	id := p.nextDocPrID
	p.nextDocPrID++
	return id
}

// WriteTo writes the package as a DOCX archive. Parsed parts are serialized
// from their current content; everything else is copied unchanged.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := p.write(cw); err != nil {
		return cw.n, NewDocumentError("save", "", err)
	}
	return cw.n, nil
}

// Bytes returns the package as a DOCX archive.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile writes the package to path.
func (p *Package) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := p.write(&buf); err != nil {
		return NewDocumentError("save", path, err)
	}
	// 0644: the output is a regular user document
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return NewDocumentError("save", path, err)
	}
	return nil
}

func (p *Package) write(w io.Writer) error {
	parts := map[string]*Part{p.Main.Name: p.Main}
	for _, part := range p.HeaderFooters {
		parts[part.Name] = part
	}
	relsName := relationshipsPartName(mainDocumentPart)

	zw := zip.NewWriter(w)
	wroteRels, wroteTypes := false, false

	for _, file := range p.reader.Files() {
		switch {
		case parts[file.Name] != nil:
			content, err := parts[file.Name].Doc.Bytes()
			if err != nil {
				return fmt.Errorf("failed to serialize %s: %w", file.Name, err)
			}
			if err := writePart(zw, file.Name, content); err != nil {
				return err
			}

		case file.Name == relsName && p.relsDirty:
			content, err := p.rels.Marshal()
			if err != nil {
				return err
			}
			if err := writePart(zw, file.Name, content); err != nil {
				return err
			}
			wroteRels = true

		case file.Name == contentTypesPart && p.typesDirty:
			content, err := p.contentTypes.Marshal()
			if err != nil {
				return err
			}
			if err := writePart(zw, file.Name, content); err != nil {
				return err
			}
			wroteTypes = true

		default:
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
		}
	}

	if p.relsDirty && !wroteRels {
		content, err := p.rels.Marshal()
		if err != nil {
			return err
		}
		if err := writePart(zw, relsName, content); err != nil {
			return err
		}
	}

	if p.typesDirty && !wroteTypes {
		content, err := p.contentTypes.Marshal()
		if err != nil {
			return err
		}
		if err := writePart(zw, contentTypesPart, content); err != nil {
			return err
		}
	}

	for _, m := range p.media {
		if err := writePart(zw, m.name, m.data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}

func writePart(zw *zip.Writer, name string, content []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// MediaParts returns the names of the media added since the package was opened.
func (p *Package) MediaParts() []string {
	names := make([]string, 0, len(p.media))
	for _, m := range p.media {
		names = append(names, m.name)
	}
	sort.Strings(names)
	return names
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
