// Package templatr fills placeholder markers in Word (DOCX) documents with
// values from a JSON directive file.
//
// A directive names a marker, such as {{customer}}, and a typed value:
//
//   - text: replaces the marker inside its paragraph, keeping the run formatting
//   - list: expands into consecutive paragraphs, tables and images after the marker
//   - table: replaces the marker's paragraph with a table built from columns and rows
//   - image: replaces the marker's paragraph with an inline picture
//
// # Quick Start
//
//	directives, err := templatr.LoadDirectivesFile("data.json", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pkg, report, err := templatr.Fill("template.docx", directives)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, o := range report.Unresolved() {
//	    log.Printf("marker %s not found", o.Placeholder)
//	}
//
//	if err := pkg.SaveFile("output.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Directive Files
//
//	{"items": [
//	  {"placeholder": "{{name}}", "type": "text", "value": "Ann"},
//	  {"placeholder": "{{items}}", "type": "list", "value": [
//	    {"type": "text", "value": "first"},
//	    {"type": "image", "value": "logo.png"}
//	  ]},
//	  {"placeholder": "{{table}}", "type": "table", "value": [
//	    {"columns": {"a": "Name", "b": "Qty"}},
//	    {"row": {"a": "apple", "b": "3"}}
//	  ]}
//	]}
//
// This is not a templating language: markers carry no expressions, loops or
// conditions. A filled package is only written when the caller saves it, so
// a run that fails part way never reaches the disk.
package templatr
