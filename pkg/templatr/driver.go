package templatr

import (
	"fmt"

	"github.com/go-templatr/templatr/pkg/templatr/render"
	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

// Outcome records what one directive did.
type Outcome struct {
	Placeholder string
	Kind        Kind
	// Iterations counts dispatches: one per time the marker was found
	Iterations int
	// Locates counts marker searches over all parts
	Locates int
	// Replacements counts text occurrences replaced or blocks substituted
	Replacements int
	// Stalled is set when the marker was still found at the same place
	// after a dispatch, so the directive was cut short
	Stalled bool
	// Unresolved is set when the directive changed nothing
	Unresolved bool
}

// Report collects the outcome of every directive of a run, in order.
type Report struct {
	Outcomes []Outcome
}

// Unresolved returns the outcomes of directives that changed nothing.
func (r *Report) Unresolved() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Unresolved {
			out = append(out, o)
		}
	}
	return out
}

// Replacements returns the total number of substitutions made.
func (r *Report) Replacements() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Replacements
	}
	return total
}

// Driver applies directives to a package.
type Driver struct {
	config *Config
	logger *Logger
}

// NewDriver creates a driver. A nil config means the global configuration;
// zero fields of a given config take their defaults.
func NewDriver(config *Config) *Driver {
	if config == nil {
		config = GetGlobalConfig()
	}
	return &Driver{
		config: NewConfigWithDefaults(config),
		logger: GetLogger(),
	}
}

// WithLogger returns a copy of the driver that logs to logger.
func (d *Driver) WithLogger(logger *Logger) *Driver {
	c := *d
	c.logger = logger
	return &c
}

// Run applies directives in order. Each directive is resolved against the
// document as the previous ones left it.
//
// A malformed directive or an unreadable image aborts the run with the
// document partly filled; the caller must not save it. Directives whose
// marker is never found are reported and logged, or fail the run with an
// UnresolvedMarkerError in strict mode.
func (d *Driver) Run(pkg *Package, directives []Directive) (report *Report, err error) {
	report = &Report{Outcomes: make([]Outcome, 0, len(directives))}
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()

	for _, dir := range directives {
		out, applyErr := d.apply(pkg, dir)
		if applyErr != nil {
			return report, applyErr
		}
		report.Outcomes = append(report.Outcomes, out)

		log := d.logger.WithFields(Fields{"placeholder": dir.Placeholder, "kind": dir.Kind()})
		switch {
		case out.Unresolved:
			reason := unresolvedReason(dir, out)
			if d.config.StrictMode {
				return report, NewUnresolvedMarkerError(dir.Placeholder, dir.Kind(), reason)
			}
			log.Warn("Unresolved marker: %s", reason)
		case out.Stalled:
			log.Warn("Marker still present after substitution")
		default:
			d.logger.DebugOutcome(out)
		}
	}

	return report, nil
}

func unresolvedReason(dir Directive, out Outcome) string {
	if v, ok := dir.Value.(UnknownValue); ok {
		if v.Type == "" {
			return "missing directive type"
		}
		return fmt.Sprintf("unknown directive type %q", v.Type)
	}
	if out.Iterations == 0 {
		return "marker not found"
	}
	return "marker found but not replaced (split across formatting runs?)"
}

func (d *Driver) apply(pkg *Package, dir Directive) (Outcome, error) {
	out := Outcome{Placeholder: dir.Placeholder, Kind: dir.Kind()}

	if err := d.resolve(pkg, pkg.Body(), dir, &out); err != nil {
		return out, err
	}

	if dir.Kind() == KindText && d.config.HeadersFooters {
		for _, part := range pkg.HeaderFooters {
			if err := d.resolve(pkg, part.Doc.Body, dir, &out); err != nil {
				return out, err
			}
		}
	}

	out.Unresolved = out.Replacements == 0
	return out, nil
}

// resolve runs the locate/dispatch loop for one directive over one body.
// The loop stops when the marker is gone or when it is found again at the
// position of the previous dispatch, which means the dispatch made no
// progress. Iterations are also capped by the initial block count.
func (d *Driver) resolve(pkg *Package, body *xml.Body, dir Directive, out *Outcome) error {
	limit := body.Len() + 1
	prev := render.NotFound

	idx := d.locate(body, dir.Placeholder, out)
	for iterations := 0; idx != render.NotFound && idx != prev && iterations < limit; iterations++ {
		out.Iterations++

		n, err := d.dispatch(pkg, body, idx, dir)
		if err != nil {
			return err
		}
		out.Replacements += n

		prev = idx
		idx = d.locate(body, dir.Placeholder, out)
	}

	if idx != render.NotFound && out.Iterations > 0 {
		out.Stalled = true
	}
	return nil
}

func (d *Driver) locate(body *xml.Body, marker string, out *Outcome) int {
	out.Locates++
	return render.Locate(body, marker)
}

// dispatch substitutes the directive at the anchor block idx and returns
// the number of replacements made.
func (d *Driver) dispatch(pkg *Package, body *xml.Body, idx int, dir Directive) (int, error) {
	switch v := dir.Value.(type) {
	case TextValue:
		return render.SubstituteText(body, dir.Placeholder, string(v)), nil

	case ListValue:
		return d.insertList(pkg, body, idx, dir.Placeholder, v)

	case TableValue:
		table, err := d.buildTable(dir.Placeholder, v)
		if err != nil {
			return 0, err
		}
		body.Insert(idx, table)
		body.Remove(idx + 1)
		return 1, nil

	case ImageValue:
		img, err := d.buildImage(pkg, string(v))
		if err != nil {
			return 0, err
		}
		body.Insert(idx, img)
		body.Remove(idx + 1)
		return 1, nil

	default:
		// no mutation; the progress guard ends the loop
		return 0, nil
	}
}

// insertList clears the marker from the anchor paragraph and places the
// items after it. A leading text item joins the anchor as an extra run so
// no empty paragraph is left behind; later text items become paragraphs
// sharing the anchor's paragraph properties, so list numbering continues.
// The anchor is dropped when items were inserted after it and it has
// nothing left to show.
func (d *Driver) insertList(pkg *Package, body *xml.Body, anchorIdx int, placeholder string, items ListValue) (int, error) {
	anchor, ok := body.At(anchorIdx).(*xml.Paragraph)
	if !ok {
		return 0, fmt.Errorf("anchor block %d is not a paragraph", anchorIdx)
	}
	cleared := render.ReplaceInParagraph(anchor, placeholder, "")
	if cleared == 0 {
		// marker split over runs; inserting would repeat on every pass
		return 0, nil
	}

	cursor := anchorIdx + 1
	inserted := 0
	appended := false

	for _, item := range flattenList(items) {
		switch v := item.Value.(type) {
		case TextValue:
			if inserted == 0 {
				anchor.AppendRun(render.NewTextRun(string(v)))
				appended = true
				break
			}
			p := render.NewParagraph(string(v))
			if props := anchor.Properties(); props != nil {
				p.SetProperties(props.Clone())
			}
			body.Insert(cursor, p)
			cursor++

		case TableValue:
			table, err := d.buildTable(placeholder, v)
			if err != nil {
				return inserted, err
			}
			// Word merges tables that touch
			if _, ok := body.At(cursor - 1).(*xml.Table); ok {
				body.Insert(cursor, xml.NewParagraph())
				cursor++
			}
			body.Insert(cursor, table)
			cursor++

		case ImageValue:
			img, err := d.buildImage(pkg, string(v))
			if err != nil {
				return inserted, err
			}
			body.Insert(cursor, img)
			cursor++

		default:
			if d.config.StrictMode {
				return inserted, NewUnresolvedMarkerError(placeholder, KindList, unresolvedReason(item, Outcome{}))
			}
			d.logger.WithField("placeholder", placeholder).Warn("Skipping list item: %s", unresolvedReason(item, Outcome{}))
			continue
		}
		inserted++
	}

	if inserted > 0 && !appended && anchor.IsBlank() {
		body.Remove(anchorIdx)
	}
	if inserted == 0 {
		// an empty list still removes its marker
		return cleared, nil
	}
	return inserted, nil
}

// flattenList expands nested lists in place, depth first.
func flattenList(items ListValue) []Directive {
	var flat []Directive
	for _, item := range items {
		if nested, ok := item.Value.(ListValue); ok {
			flat = append(flat, flattenList(nested)...)
			continue
		}
		flat = append(flat, item)
	}
	return flat
}

func (d *Driver) buildTable(placeholder string, v TableValue) (*xml.Table, error) {
	table, err := render.NewTable(v.Spec, render.TableOptions{Style: d.config.TableStyle})
	if err != nil {
		return nil, NewMalformedDirectiveError("", placeholder, KindTable, "invalid table", err)
	}
	return table, nil
}

func (d *Driver) buildImage(pkg *Package, path string) (*xml.Paragraph, error) {
	img, err := pkg.AddImage(path, d.config)
	if err != nil {
		return nil, err
	}
	return render.NewImageParagraph(img), nil
}
