package testcase

import "strings"

const (
	maxTitleLen = 300
	maxSteps    = 20
)

// ValidateCase checks a generated case before it is surfaced for review.
// Returns true if the case is usable; it also normalizes whitespace and
// caps the step list in place.
func ValidateCase(c *Case) bool {
	if c == nil {
		return false
	}
	c.Title = strings.TrimSpace(c.Title)
	c.Expected = strings.TrimSpace(c.Expected)
	if len(c.Title) < 3 || len(c.Title) > maxTitleLen {
		return false
	}
	if c.Expected == "" {
		return false
	}

	steps := c.Steps[:0]
	for _, s := range c.Steps {
		s = strings.TrimSpace(s)
		if s != "" {
			steps = append(steps, s)
		}
	}
	c.Steps = steps
	if len(c.Steps) == 0 {
		return false
	}
	if len(c.Steps) > maxSteps {
		c.Steps = c.Steps[:maxSteps]
	}

	switch c.Priority {
	case "High", "Medium", "Low":
	default:
		c.Priority = "Medium"
	}
	return true
}
