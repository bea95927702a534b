package templatr

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"

	"github.com/go-templatr/templatr/pkg/templatr/render"
)

// ParseDirectives decodes a directive file:
//
//	{"items": [{"placeholder": "{{name}}", "type": "text", "value": "Ann"}, ...]}
//
// Relative image paths are resolved against baseDir when it is not empty.
// Values and column keys are normalized to NFC; placeholders are kept as
// written.
func ParseDirectives(data []byte, baseDir string) ([]Directive, error) {
	return parseDirectives(data, "", baseDir)
}

// LoadDirectivesFile reads and decodes a directive file. An empty baseDir
// resolves image paths against the file's own directory.
func LoadDirectivesFile(path, baseDir string) ([]Directive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(path, "failed to read directive file", err)
	}
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}
	return parseDirectives(data, path, baseDir)
}

func parseDirectives(data []byte, file, baseDir string) ([]Directive, error) {
	if !gjson.ValidBytes(data) {
		return nil, NewParseError(file, "not valid JSON", nil)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, NewParseError(file, "top level must be an object", nil)
	}
	items := root.Get("items")
	if !items.IsArray() {
		return nil, NewParseError(file, `missing "items" array`, nil)
	}

	p := &directiveParser{baseDir: baseDir}
	var directives []Directive
	for i, item := range items.Array() {
		d, err := p.directive(fmt.Sprintf("items.%d", i), item, true)
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}
	return directives, nil
}

type directiveParser struct {
	baseDir string
}

func (p *directiveParser) directive(path string, item gjson.Result, top bool) (Directive, error) {
	if !item.IsObject() {
		return Directive{}, NewMalformedDirectiveError(path, "", KindUnknown, "directive must be an object", nil)
	}

	var placeholder string
	if top {
		ph := item.Get("placeholder")
		if ph.Type != gjson.String || ph.String() == "" {
			return Directive{}, NewMalformedDirectiveError(path, "", KindUnknown, `missing "placeholder"`, nil)
		}
		// matched byte for byte against the document text, which is not normalized
		placeholder = ph.String()
	}

	typ := item.Get("type")
	kind := KindUnknown
	if typ.Type == gjson.String {
		kind = kindFromString(typ.String())
	}

	value := item.Get("value")
	malformed := func(msg string) error {
		return NewMalformedDirectiveError(path, placeholder, kind, msg, nil)
	}

	d := Directive{Placeholder: placeholder}
	switch kind {
	case KindText:
		s, ok := scalarString(value)
		if !ok {
			return Directive{}, malformed("value must be a string")
		}
		d.Value = TextValue(s)

	case KindImage:
		if value.Type != gjson.String || value.String() == "" {
			return Directive{}, malformed("value must be a non-empty image path")
		}
		d.Value = ImageValue(p.resolvePath(norm.NFC.String(value.String())))

	case KindList:
		if !value.IsArray() {
			return Directive{}, malformed("value must be an array of items")
		}
		items := ListValue{}
		for i, child := range value.Array() {
			nested, err := p.directive(fmt.Sprintf("%s.value.%d", path, i), child, false)
			if err != nil {
				return Directive{}, err
			}
			items = append(items, nested)
		}
		d.Value = items

	case KindTable:
		spec, err := p.table(value)
		if err != nil {
			return Directive{}, malformed(err.Error())
		}
		d.Value = TableValue{Spec: spec}

	default:
		d.Value = UnknownValue{Type: typ.String()}
	}

	return d, nil
}

func (p *directiveParser) table(value gjson.Result) (render.TableSpec, error) {
	if !value.IsArray() {
		return render.TableSpec{}, fmt.Errorf("value must be an array of row specifications")
	}
	elems := value.Array()
	if len(elems) == 0 {
		return render.TableSpec{}, fmt.Errorf(`value must start with a "columns" element`)
	}

	colsObj := elems[0].Get("columns")
	if !colsObj.IsObject() {
		return render.TableSpec{}, fmt.Errorf(`first element must carry a "columns" object`)
	}
	var columns []render.Column
	var colErr error
	colsObj.ForEach(func(key, header gjson.Result) bool {
		h, ok := scalarString(header)
		if !ok {
			colErr = fmt.Errorf("header of column %q must be a string", key.String())
			return false
		}
		columns = append(columns, render.Column{Key: norm.NFC.String(key.String()), Header: h})
		return true
	})
	if colErr != nil {
		return render.TableSpec{}, colErr
	}
	if len(columns) == 0 {
		return render.TableSpec{}, fmt.Errorf("table must have at least one column")
	}

	rows := make([]map[string]string, 0, len(elems)-1)
	for i, elem := range elems[1:] {
		rowObj := elem.Get("row")
		if !rowObj.IsObject() {
			return render.TableSpec{}, fmt.Errorf(`element %d must carry a "row" object`, i+1)
		}
		row := make(map[string]string)
		var cellErr error
		rowObj.ForEach(func(key, cell gjson.Result) bool {
			s, ok := scalarString(cell)
			if !ok {
				cellErr = fmt.Errorf("cell %q of row %d must be a string", key.String(), i)
				return false
			}
			row[norm.NFC.String(key.String())] = s
			return true
		})
		if cellErr != nil {
			return render.TableSpec{}, cellErr
		}
		rows = append(rows, row)
	}

	return render.NewTableSpec(columns, rows), nil
}

func (p *directiveParser) resolvePath(path string) string {
	if p.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.baseDir, path)
}

// scalarString accepts strings, numbers and booleans. Numbers keep their
// literal spelling, so 1.50 stays "1.50".
func scalarString(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		return norm.NFC.String(v.String()), true
	case gjson.Number:
		return v.Raw, true
	case gjson.True, gjson.False:
		return v.String(), true
	default:
		return "", false
	}
}
