package testcase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var csvHeader = []string{"ID", "Title", "Steps", "Expected Result", "Priority", "Source Issue"}

// WriteCSV writes cases as a spreadsheet-importable CSV document. Steps are
// numbered and newline-separated within their cell.
func WriteCSV(w io.Writer, cases []Case) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range cases {
		var steps strings.Builder
		for i, s := range c.Steps {
			if i > 0 {
				steps.WriteString("\n")
			}
			fmt.Fprintf(&steps, "%d. %s", i+1, s)
		}
		rec := []string{c.ID, c.Title, steps.String(), c.Expected, c.Priority, c.Source}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SubtaskBody renders cases as the plain-text body of a Jira subtask.
func SubtaskBody(cases []Case) string {
	var b strings.Builder
	for i, c := range cases {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s\n", c.ID, c.Title)
		for j, s := range c.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", j+1, s)
		}
		fmt.Fprintf(&b, "  Expected: %s", c.Expected)
	}
	return b.String()
}
