// Package htmltext converts the constrained HTML subset served by Jira's
// rendered fields into plain text, and slices documents into sections by
// heading. Both operations are total string transforms: any input yields a
// string, unmatched tags are tolerated, and nothing here can fail.
package htmltext

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	liBoundaryRe = regexp.MustCompile(`(?i)</li>\s*<li`)
	liOpenRe     = regexp.MustCompile(`(?i)<li[^>]*>`)
	liCloseRe    = regexp.MustCompile(`(?i)</li>`)
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	pBoundaryRe  = regexp.MustCompile(`(?i)</p>\s*<p[^>]*>`)
	pOpenRe      = regexp.MustCompile(`(?i)<p[^>]*>`)
	pCloseRe     = regexp.MustCompile(`(?i)</p>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	entityRe     = regexp.MustCompile(`&(nbsp|amp|lt|gt|quot|#[0-9]+);`)
	trailingWSRe = regexp.MustCompile(`[ \t]+\n`)
	multiNLRe    = regexp.MustCompile(`\n{3,}`)
)

// PlainText renders HTML to plain text. List items become "- " bullet
// lines, paragraph and <br> boundaries become newlines, remaining tags are
// stripped, entities are decoded in a single pass, and runs of three or
// more newlines collapse to two.
func PlainText(html string) string {
	if html == "" {
		return ""
	}

	s := html
	// Adjacent list items collapse to one boundary; the newline for each
	// item comes from the opening-tag replacement below.
	s = liBoundaryRe.ReplaceAllString(s, "<li")
	s = liOpenRe.ReplaceAllString(s, "\n- ")
	s = liCloseRe.ReplaceAllString(s, "")
	s = brRe.ReplaceAllString(s, "\n")
	// Likewise paragraph-to-paragraph transitions collapse to a single
	// boundary; a trailing </p> contributes its own newline.
	s = pBoundaryRe.ReplaceAllString(s, "\n")
	s = pOpenRe.ReplaceAllString(s, "")
	s = pCloseRe.ReplaceAllString(s, "\n")
	s = anyTagRe.ReplaceAllString(s, "")
	s = decodeEntities(s)

	s = strings.ReplaceAll(s, "\r", "")
	s = trailingWSRe.ReplaceAllString(s, "\n")
	s = multiNLRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// decodeEntities decodes the supported named entities and numeric character
// references in one left-to-right pass, so "&amp;nbsp;" becomes "&nbsp;"
// and is not decoded a second time.
func decodeEntities(s string) string {
	return entityRe.ReplaceAllStringFunc(s, func(m string) string {
		body := m[1 : len(m)-1]
		switch body {
		case "nbsp":
			return " "
		case "amp":
			return "&"
		case "lt":
			return "<"
		case "gt":
			return ">"
		case "quot":
			return `"`
		}
		// Numeric reference &#NNN;.
		n, err := strconv.Atoi(body[1:])
		if err != nil || n < 0 {
			return m
		}
		return string(rune(n))
	})
}

// AcceptanceHeading matches an "acceptance criteria" heading with flexible
// whitespace, for use with SectionByHeading.
var AcceptanceHeading = regexp.MustCompile(`(?i)acceptance\s+criteria`)

var headingRe = regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]\s*>`)

// SectionByHeading locates the first <h1>-<h6> whose plain-text rendering
// matches pattern. It returns the raw HTML between that heading's closing
// tag and the next heading (or end of document), and the document with the
// heading and its section removed. found is false when no heading matches;
// the input is then returned unchanged as remainder.
//
// Matching is done against the heading's rendered text, so headings with
// nested inline markup behave the same as bare ones.
func SectionByHeading(html string, pattern *regexp.Regexp) (section, remainder string, found bool) {
	locs := headingRe.FindAllStringSubmatchIndex(html, -1)
	for i, loc := range locs {
		headText := PlainText(html[loc[2]:loc[3]])
		if !pattern.MatchString(headText) {
			continue
		}

		start := loc[1]
		end := len(html)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return html[start:end], html[:loc[0]] + html[end:], true
	}
	return "", html, false
}
