// Package render provides the block-level helpers used to fill a template.
//
// The functions here work directly on the xml package types and hold no
// state. They do not import the templatr package, which imports them.
//
// # Structure Organization
//
//   - locate.go: Locate, finding the first paragraph that contains a marker
//   - substitute.go: SubstituteText and ClearMarker, in-place text replacement
//   - paragraph.go: NewParagraph and NewImageParagraph
//   - table.go: TableSpec and NewTable
//
// # Key Concepts
//
// A marker is matched against the flattened text of a paragraph's direct
// runs. A marker that Word split over several runs (because of a spelling
// mark or a formatting change in the middle) is not found; retyping the
// marker in one go fixes the template.
//
// Positions are indexes into xml.Body. Callers mutate the body through its
// Insert and Remove operations and call Locate again after every change.
//
// Example of replacing a marker with a table:
//
//	spec := render.NewTableSpec([]render.Column{{Key: "a", Header: "A"}}, rows)
//	table, err := render.NewTable(spec, render.TableOptions{})
//	if err != nil {
//	    return err
//	}
//	if i := render.Locate(body, "{{table}}"); i != render.NotFound {
//	    body.Insert(i, table)
//	    body.Remove(i + 1)
//	}
package render
