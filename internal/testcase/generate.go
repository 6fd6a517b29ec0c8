// Package testcase turns a resolved story into reviewable test cases and
// exports them. Generation is deterministic: the same story always yields
// the same cases.
package testcase

import (
	"fmt"
	"strings"

	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
)

// Case is one generated test case.
type Case struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Steps    []string `json:"steps"`
	Expected string   `json:"expected"`
	Priority string   `json:"priority"`
	Source   string   `json:"source,omitempty"`
}

// Generate derives test cases from a story. Each acceptance criterion
// becomes one positive case; when no criteria exist a single baseline case
// is built from the story body so the output is never empty for a
// non-empty story.
func Generate(d story.Detail) []Case {
	criteria := splitCriteria(d.AcceptanceCriteria)

	var cases []Case
	for i, crit := range criteria {
		cases = append(cases, Case{
			ID:    caseID(d.Key, i+1),
			Title: "Verify " + lowerFirst(crit),
			Steps: []string{
				"Set up the preconditions described in the story.",
				"Perform the action covered by the criterion.",
			},
			Expected: crit,
			Priority: "High",
			Source:   d.Key,
		})
	}

	if len(cases) == 0 && strings.TrimSpace(d.Description) != "" {
		cases = append(cases, Case{
			ID:    caseID(d.Key, 1),
			Title: baselineTitle(d),
			Steps: []string{
				"Execute the main flow described by the story.",
			},
			Expected: "The behavior described in the story holds.",
			Priority: "Medium",
			Source:   d.Key,
		})
	}
	return cases
}

// splitCriteria breaks an acceptance-criteria block into individual
// criteria: one per "- " bullet line, or one per non-empty line when the
// block carries no bullets.
func splitCriteria(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func caseID(key string, n int) string {
	if key == "" {
		key = "STORY"
	}
	return fmt.Sprintf("%s-TC%02d", key, n)
}

func baselineTitle(d story.Detail) string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return "Verify " + lowerFirst(t)
	}
	return "Verify the story's main flow"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	// Leave likely acronyms and proper keys alone.
	if len(r) > 1 && r[0] >= 'A' && r[0] <= 'Z' && r[1] >= 'A' && r[1] <= 'Z' {
		return s
	}
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
