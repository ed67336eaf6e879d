// Package report accumulates the human-readable analysis report.
//
// A Report is an immutable value: every append returns a new Report and leaves
// the receiver untouched, so each pipeline stage takes the report built so far
// and hands back an extended one. The text is written to disk exactly once.
package report

import (
	"fmt"
	"os"
	"strings"
)

const title = "--- Weather Data Analysis Report ---"

// Section is one labeled block of the report. Status lines have no title.
type Section struct {
	Title string
	Body  string
}

// Report is an append-only sequence of sections.
type Report struct {
	header   string
	sections []Section
}

// New starts a report stamped with the current clock time and run ID.
func New(runID string) Report {
	var b strings.Builder
	b.WriteString(title + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", clock.Now().Format("2006-01-02 15:04:05"))
	if runID != "" {
		fmt.Fprintf(&b, "Run ID: %s\n", runID)
	}
	return Report{header: b.String()}
}

// Append returns a copy of r with a titled section added.
func (r Report) Append(title, body string) Report {
	return r.with(Section{Title: title, Body: body})
}

// Status returns a copy of r with a single untitled line added.
func (r Report) Status(format string, args ...any) Report {
	return r.with(Section{Body: fmt.Sprintf(format, args...)})
}

func (r Report) with(s Section) Report {
	sections := make([]Section, len(r.sections), len(r.sections)+1)
	copy(sections, r.sections)
	return Report{header: r.header, sections: append(sections, s)}
}

// Sections returns a copy of the sections in append order.
func (r Report) Sections() []Section {
	return append([]Section(nil), r.sections...)
}

// String renders the full report text.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.header)
	b.WriteString("\n")
	for i, s := range r.sections {
		if s.Title == "" {
			b.WriteString(strings.TrimRight(s.Body, "\n"))
			b.WriteString("\n")
			continue
		}
		if i > 0 && r.sections[i-1].Title == "" {
			b.WriteString("\n")
		}
		b.WriteString(s.Title)
		b.WriteString(":\n")
		b.WriteString(strings.TrimRight(s.Body, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteFile writes the rendered report to path, replacing any existing file.
func (r Report) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	if _, err := f.WriteString(r.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
