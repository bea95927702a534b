package templatr

import "github.com/go-templatr/templatr/pkg/templatr/render"

// Kind identifies the type of a directive's value.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindList
	KindTable
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// kindFromString maps the "type" field of the data file to a Kind.
func kindFromString(s string) Kind {
	switch s {
	case "text":
		return KindText
	case "list":
		return KindList
	case "table":
		return KindTable
	case "image":
		return KindImage
	default:
		return KindUnknown
	}
}

// Directive is one substitution: the marker to find and the value to put there.
// Items nested in a list have an empty Placeholder.
type Directive struct {
	Placeholder string
	Value       Value
}

// Kind returns the kind of the directive's value.
func (d Directive) Kind() Kind {
	if d.Value == nil {
		return KindUnknown
	}
	return d.Value.Kind()
}

// Value is the payload of a directive. The set of implementations is closed:
// TextValue, ListValue, TableValue, ImageValue and UnknownValue.
type Value interface {
	Kind() Kind
	isValue()
}

// TextValue replaces the marker inside its paragraph.
type TextValue string

func (TextValue) Kind() Kind { return KindText }
func (TextValue) isValue()   {}

// ListValue expands into consecutive blocks after the marker's paragraph.
type ListValue []Directive

func (ListValue) Kind() Kind { return KindList }
func (ListValue) isValue()   {}

// TableValue replaces the marker's paragraph with a table.
type TableValue struct {
	Spec render.TableSpec
}

func (TableValue) Kind() Kind { return KindTable }
func (TableValue) isValue()   {}

// ImageValue replaces the marker's paragraph with the image at the path.
type ImageValue string

func (ImageValue) Kind() Kind { return KindImage }
func (ImageValue) isValue()   {}

// UnknownValue carries a type the engine does not know. It is skipped, or
// rejected in strict mode.
type UnknownValue struct {
	Type string
}

func (UnknownValue) Kind() Kind { return KindUnknown }
func (UnknownValue) isValue()   {}

// Text returns a text directive.
func Text(placeholder, value string) Directive {
	return Directive{Placeholder: placeholder, Value: TextValue(value)}
}

// List returns a list directive.
func List(placeholder string, items ...Directive) Directive {
	return Directive{Placeholder: placeholder, Value: ListValue(items)}
}

// Table returns a table directive. Columns are ordered by key.
func Table(placeholder string, columns []render.Column, rows []map[string]string) Directive {
	return Directive{Placeholder: placeholder, Value: TableValue{Spec: render.NewTableSpec(columns, rows)}}
}

// Image returns an image directive.
func Image(placeholder, path string) Directive {
	return Directive{Placeholder: placeholder, Value: ImageValue(path)}
}
