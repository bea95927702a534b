package templatr

import (
	"fmt"
	"strings"

	"github.com/go-templatr/templatr/pkg/templatr/render"
	"github.com/go-templatr/templatr/pkg/templatr/xml"
)

// IssueSeverity indicates check issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode identifies the kind of problem Check found.
type IssueCode string

const (
	IssueCodeMarkerNotFound IssueCode = "MARKER_NOT_FOUND"
	IssueCodeMarkerInTable  IssueCode = "MARKER_IN_TABLE"
	IssueCodeMarkerSplit    IssueCode = "MARKER_SPLIT"
	IssueCodeUnknownType    IssueCode = "UNKNOWN_TYPE"
	IssueCodeInvalidTable   IssueCode = "INVALID_TABLE"
	IssueCodeImage          IssueCode = "IMAGE_UNREADABLE"
)

// CheckIssue is one problem found for a directive.
type CheckIssue struct {
	Placeholder string        `json:"placeholder"`
	Severity    IssueSeverity `json:"severity"`
	Code        IssueCode     `json:"code"`
	Message     string        `json:"message"`
}

// CheckResult lists the issues found by Check, in directive order.
type CheckResult struct {
	Directives int          `json:"directives"`
	Issues     []CheckIssue `json:"issues"`
}

// Valid reports whether no error-level issue was found.
func (r *CheckResult) Valid() bool {
	return r.count(IssueSeverityError) == 0
}

// Errors returns the number of error-level issues.
func (r *CheckResult) Errors() int { return r.count(IssueSeverityError) }

// Warnings returns the number of warning-level issues.
func (r *CheckResult) Warnings() int { return r.count(IssueSeverityWarning) }

func (r *CheckResult) count(sev IssueSeverity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// Err returns a ValidationError holding the error-level issues, or nil.
func (r *CheckResult) Err() error {
	var issues []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity != IssueSeverityError {
			continue
		}
		issues = append(issues, ValidationIssue{Field: issue.Placeholder, Message: issue.Message})
	}
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// Check reports the problems a fill of pkg with directives would run into,
// without changing the package. Markers that would stay unresolved are
// warnings, or errors in strict mode. Directives that would abort a fill are
// always errors.
func Check(pkg *Package, directives []Directive, config *Config) *CheckResult {
	if config == nil {
		config = GetGlobalConfig()
	}
	c := &checker{pkg: pkg, config: config, result: &CheckResult{Directives: len(directives)}}
	for _, dir := range directives {
		c.directive(dir)
	}
	return c.result
}

type checker struct {
	pkg    *Package
	config *Config
	result *CheckResult
}

func (c *checker) add(placeholder string, sev IssueSeverity, code IssueCode, format string, args ...interface{}) {
	c.result.Issues = append(c.result.Issues, CheckIssue{
		Placeholder: placeholder,
		Severity:    sev,
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
	})
}

// unresolved is the severity of problems that only leave a marker in place.
func (c *checker) unresolved() IssueSeverity {
	if c.config.StrictMode {
		return IssueSeverityError
	}
	return IssueSeverityWarning
}

func (c *checker) directive(dir Directive) {
	if _, ok := dir.Value.(UnknownValue); ok {
		c.add(dir.Placeholder, c.unresolved(), IssueCodeUnknownType, "%s", unresolvedReason(dir, Outcome{}))
		return
	}

	c.value(dir.Placeholder, dir.Value)
	c.marker(dir)
}

func (c *checker) value(placeholder string, value Value) {
	switch v := value.(type) {
	case TableValue:
		if err := v.Spec.Validate(); err != nil {
			c.add(placeholder, IssueSeverityError, IssueCodeInvalidTable, "invalid table: %v", err)
		}
	case ImageValue:
		if _, _, _, err := inspectImage(string(v)); err != nil {
			c.add(placeholder, IssueSeverityError, IssueCodeImage, "%v", err)
		}
	case ListValue:
		for _, item := range v {
			if u, ok := item.Value.(UnknownValue); ok {
				c.add(placeholder, c.unresolved(), IssueCodeUnknownType, "list item has unknown type %q", u.Type)
				continue
			}
			c.value(placeholder, item.Value)
		}
	}
}

func (c *checker) marker(dir Directive) {
	body := c.pkg.Body()
	if idx := render.Locate(body, dir.Placeholder); idx != render.NotFound {
		if p, ok := body.At(idx).(*xml.Paragraph); ok && splitMarker(p, dir.Placeholder) {
			c.add(dir.Placeholder, c.unresolved(), IssueCodeMarkerSplit,
				"marker is split across formatting runs in block %d", idx)
		}
		return
	}

	if dir.Kind() == KindText && c.config.HeadersFooters {
		for _, part := range c.pkg.HeaderFooters {
			if render.Locate(part.Doc.Body, dir.Placeholder) != render.NotFound {
				return
			}
		}
	}

	if render.Contains(body, dir.Placeholder) {
		c.add(dir.Placeholder, c.unresolved(), IssueCodeMarkerInTable,
			"marker only occurs inside a table or other nested block")
		return
	}
	c.add(dir.Placeholder, c.unresolved(), IssueCodeMarkerNotFound, "marker not found")
}

// splitMarker reports whether marker occurs in the paragraph text but in no
// single text node, so substitution cannot reach it.
func splitMarker(p *xml.Paragraph, marker string) bool {
	for _, r := range p.Runs() {
		for _, t := range r.Texts() {
			if strings.Contains(t.Value, marker) {
				return false
			}
		}
	}
	return true
}
