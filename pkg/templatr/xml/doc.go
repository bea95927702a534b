// Package xml provides the content model for WordprocessingML parts.
//
// A DOCX file is a ZIP archive of XML parts. The main part (word/document.xml)
// and the header and footer parts (word/headerN.xml, word/footerN.xml) all hold
// an ordered list of block-level elements: paragraphs and tables. This package
// parses such a part into a small tree that the substitution code can inspect
// and splice, and serializes it back.
//
// # Structure Organization
//
//   - types.go: Core interfaces (BodyElement, ParagraphContent, RunContent, ...) and RawXMLElement
//   - document.go: Document (one part) and Body, the index-addressed block arena
//   - parse.go: The token parser that builds the tree
//   - encode.go: The serializer
//   - paragraph.go: Paragraph
//   - run.go: Run and Text
//   - table.go: Table, Row and Cell
//   - drawing.go: Inline image runs
//
// # Key Concepts
//
// Only the elements the substitution code needs to understand are modeled:
// paragraphs, runs, text nodes, tables, rows and cells. Everything else
// (properties, bookmarks, hyperlinks, drawings, section properties, content
// controls) is kept as a RawXMLElement holding the exact source bytes, so it
// survives a parse/serialize cycle untouched.
//
// Names keep the prefix used in the source document (usually "w"). Elements
// created by this package use the "w" prefix.
//
// Example of splicing a part:
//
//	doc, err := xml.ParseDocument(src)
//	if err != nil {
//	    return err
//	}
//	doc.Body.Insert(0, xml.NewParagraph(xml.NewTextRun("Hello, world!")))
//	out, err := doc.Bytes()
package xml
