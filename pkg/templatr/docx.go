package templatr

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Well-known part names and namespaces of a DOCX package.
const (
	mainDocumentPart = "word/document.xml"
	contentTypesPart = "[Content_Types].xml"

	relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNamespace  = "http://schemas.openxmlformats.org/package/2006/content-types"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// DocxReader handles reading DOCX files
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// ContentTypes represents [Content_Types].xml
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault maps a file extension to a content type
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride sets the content type of a single part
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// NewDocxReader creates a new DOCX reader
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}

	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	if _, ok := dr.Parts[mainDocumentPart]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", mainDocumentPart)
	}

	return dr, nil
}

// DocxReaderFromFile creates a DocxReader from a file path
func DocxReaderFromFile(path string) (*DocxReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return NewDocxReader(bytes.NewReader(content), int64(len(content)))
}

// Files returns the archive entries in their original order
func (dr *DocxReader) Files() []*zip.File {
	return dr.reader.File
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// HasPart reports whether the package contains partName
func (dr *DocxReader) HasPart(partName string) bool {
	_, ok := dr.Parts[partName]
	return ok
}

// ListParts returns the names of all parts, sorted
func (dr *DocxReader) ListParts() []string {
	parts := make([]string, 0, len(dr.Parts))
	for name := range dr.Parts {
		parts = append(parts, name)
	}
	sort.Strings(parts)
	return parts
}

// GetRelationships retrieves relationships for a given part.
// A part without a relationships file has none.
func (dr *DocxReader) GetRelationships(partName string) (*Relationships, error) {
	relPath := relationshipsPartName(partName)

	rels := &Relationships{Namespace: relationshipsNamespace}
	if !dr.HasPart(relPath) {
		return rels, nil
	}

	content, err := dr.GetPart(relPath)
	if err != nil {
		return nil, err
	}
	if err := xml.Unmarshal(content, rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}

	return rels, nil
}

// GetContentTypes parses [Content_Types].xml
func (dr *DocxReader) GetContentTypes() (*ContentTypes, error) {
	content, err := dr.GetPart(contentTypesPart)
	if err != nil {
		return nil, err
	}

	ct := &ContentTypes{}
	if err := xml.Unmarshal(content, ct); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}
	return ct, nil
}

// relationshipsPartName converts a part name to its relationships file name,
// e.g. "word/document.xml" -> "word/_rels/document.xml.rels".
func relationshipsPartName(partName string) string {
	dir := ""
	base := partName
	if idx := strings.LastIndex(partName, "/"); idx != -1 {
		dir = partName[:idx]
		base = partName[idx+1:]
	}

	if dir == "" {
		return fmt.Sprintf("_rels/%s.rels", base)
	}
	return fmt.Sprintf("%s/_rels/%s.rels", dir, base)
}

// getNextRelationshipID generates the next available relationship ID
func getNextRelationshipID(rels *Relationships) string {
	maxID := 0

	for _, rel := range rels.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			if id, err := strconv.Atoi(rel.ID[3:]); err == nil && id > maxID {
				maxID = id
			}
		}
	}

	return fmt.Sprintf("rId%d", maxID+1)
}

// Add appends a relationship with the next free id and returns the id.
func (r *Relationships) Add(relType, target string) string {
	id := getNextRelationshipID(r)
	r.Relationship = append(r.Relationship, Relationship{
		ID:     id,
		Type:   relType,
		Target: target,
	})
	return id
}

// Marshal serializes the relationships with the XML declaration Word expects.
func (r *Relationships) Marshal() ([]byte, error) {
	out := Relationships{
		// Unmarshal fills XMLName.Space; clearing it avoids a second xmlns
		XMLName:      xml.Name{Local: "Relationships"},
		Namespace:    relationshipsNamespace,
		Relationship: r.Relationship,
	}
	data, err := xml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relationships: %w", err)
	}
	return append([]byte(xmlHeader), data...), nil
}

// HasDefault reports whether ext already has a default content type
func (ct *ContentTypes) HasDefault(ext string) bool {
	for _, def := range ct.Defaults {
		if strings.EqualFold(def.Extension, ext) {
			return true
		}
	}
	return false
}

// AddDefault registers contentType for ext unless it is already registered.
// It reports whether anything changed.
func (ct *ContentTypes) AddDefault(ext, contentType string) bool {
	if ct.HasDefault(ext) {
		return false
	}
	ct.Defaults = append(ct.Defaults, ContentTypeDefault{
		Extension:   ext,
		ContentType: contentType,
	})
	return true
}

// Marshal serializes the content types with the XML declaration Word expects.
func (ct *ContentTypes) Marshal() ([]byte, error) {
	out := ContentTypes{
		XMLName:   xml.Name{Local: "Types"},
		Namespace: contentTypesNamespace,
		Defaults:  ct.Defaults,
		Overrides: ct.Overrides,
	}
	data, err := xml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content types: %w", err)
	}
	return append([]byte(xmlHeader), data...), nil
}
