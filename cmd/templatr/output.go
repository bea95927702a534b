package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/go-templatr/templatr/pkg/templatr"
)

// printer writes status lines, colored when the output is a terminal or
// --color=on.
type printer struct {
	w       io.Writer
	ok      *color.Color
	warn    *color.Color
	fail    *color.Color
	dim     *color.Color
	heading *color.Color
}

func newPrinter(cmd *cobra.Command, w io.Writer) *printer {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		colorFlag = "auto"
	}
	useColor := colorFlag == "on"
	if colorFlag == "auto" {
		if f, ok := w.(*os.File); ok {
			useColor = isTerminal(f)
		}
	}

	p := &printer{
		w:       w,
		ok:      color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
		heading: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.dim, p.heading} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) success(format string, args ...interface{}) {
	p.ok.Fprint(p.w, "ok ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) warning(format string, args ...interface{}) {
	p.warn.Fprint(p.w, "warning: ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) failure(format string, args ...interface{}) {
	p.fail.Fprint(p.w, "error: ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

// report prints the unresolved directives of a fill.
func (p *printer) report(report *templatr.Report) {
	if report == nil {
		return
	}
	for _, o := range report.Unresolved() {
		p.warning("%s (%s) left unresolved", o.Placeholder, o.Kind)
	}
	for _, o := range report.Outcomes {
		if o.Stalled && !o.Unresolved {
			p.warning("%s (%s) is still present after filling", o.Placeholder, o.Kind)
		}
	}
}

// issues prints check issues grouped by severity.
func (p *printer) issues(result *templatr.CheckResult) {
	for _, issue := range result.Issues {
		label := p.warn
		if issue.Severity == templatr.IssueSeverityError {
			label = p.fail
		}
		label.Fprintf(p.w, "%-7s ", issue.Severity)
		p.heading.Fprint(p.w, issue.Placeholder)
		fmt.Fprintf(p.w, " %s ", issue.Message)
		p.dim.Fprintf(p.w, "[%s]\n", issue.Code)
	}
}
