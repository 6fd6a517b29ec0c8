// Package story resolves a Jira issue payload into a story detail: a plain
// text description and a plain text acceptance-criteria block. Resolution
// tries a configured field, field auto-discovery, the structured document
// form of the description, and the rendered HTML form, in that order, and
// falls through on malformed shapes instead of failing.
package story

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/MohanBalaji3/TestCaseStudio/internal/adf"
	"github.com/MohanBalaji3/TestCaseStudio/internal/htmltext"
)

// Detail is the resolved story payload. Description and AcceptanceCriteria
// are always present, defaulting to the empty string.
type Detail struct {
	Key                string `json:"key"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
}

// Issue is the subset of a Jira issue payload the resolver consumes: the
// raw field map, the rendered (HTML) description when the API served one,
// and the field-id-to-label map from expand=names.
type Issue struct {
	Key                 string                     `json:"key"`
	Summary             string                     `json:"summary"`
	Fields              map[string]json.RawMessage `json:"fields"`
	RenderedDescription string                     `json:"renderedDescription"`
	Names               map[string]string          `json:"names"`
}

// Options configures resolution.
type Options struct {
	// AcceptanceFieldID, when set, names a field already holding the
	// acceptance criteria (e.g. "customfield_10042").
	AcceptanceFieldID string
}

// Resolve produces the story detail for an issue. It never fails: every
// stage degrades to the next on unexpected shapes, and both output fields
// default to "".
func Resolve(in Issue, opts Options) Detail {
	d := Detail{Key: in.Key, Title: in.Summary}

	// (1) Configured acceptance-criteria field.
	if opts.AcceptanceFieldID != "" {
		d.AcceptanceCriteria = fieldText(in.Fields[opts.AcceptanceFieldID])
	}

	// (2) Auto-discovery by field label.
	if d.AcceptanceCriteria == "" {
		if id := discoverAcceptanceField(in.Names); id != "" {
			d.AcceptanceCriteria = fieldText(in.Fields[id])
		}
	}

	rawDesc := in.Fields["description"]

	// (3) Structured-document description.
	if doc, ok := adf.Decode(rawDesc); ok {
		split := adf.Split(doc)
		d.Description = split.Description
		if d.AcceptanceCriteria == "" {
			d.AcceptanceCriteria = split.AcceptanceCriteria
		}
	}

	// (4) Rendered HTML description. This stage runs whenever either
	// output is still missing: the heading match is looser than the
	// structured boundary (flexible whitespace, substring), so a document
	// whose exact boundary node the splitter missed can still surface its
	// criteria here.
	if in.RenderedDescription != "" && (d.Description == "" || d.AcceptanceCriteria == "") {
		section, remainder, found := htmltext.SectionByHeading(in.RenderedDescription, htmltext.AcceptanceHeading)
		if found {
			if d.AcceptanceCriteria == "" {
				d.AcceptanceCriteria = htmltext.PlainText(section)
			}
			if d.Description == "" {
				d.Description = htmltext.PlainText(remainder)
			}
		} else if d.Description == "" {
			d.Description = htmltext.PlainText(in.RenderedDescription)
		}
	}

	// (5) Final description fallbacks.
	if d.Description == "" {
		switch {
		case in.RenderedDescription != "":
			d.Description = htmltext.PlainText(in.RenderedDescription)
		default:
			d.Description = rawDescriptionText(rawDesc)
		}
	}

	return d
}

// discoverAcceptanceField returns the id of the first field whose label
// contains both "acceptance" and "criteria". Ids are visited in sorted
// order so discovery is deterministic.
func discoverAcceptanceField(names map[string]string) string {
	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		label := strings.ToLower(names[id])
		if strings.Contains(label, "acceptance") && strings.Contains(label, "criteria") {
			return id
		}
	}
	return ""
}

// fieldText converts an arbitrary raw field value to plain text: ADF
// documents render through the node rules, strings go through the HTML
// converter (a no-op for plain strings once tags and entities are absent),
// and anything else yields "".
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if doc, ok := adf.Decode(raw); ok {
		split := adf.Split(doc)
		if split.AcceptanceCriteria != "" {
			// The field itself contained a marked section; keep both halves.
			return strings.TrimSpace(strings.TrimSpace(split.Description) + "\n" + split.AcceptanceCriteria)
		}
		return split.Description
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return htmltext.PlainText(s)
	}
	return ""
}

// rawDescriptionText is the last-resort description: the raw string as-is,
// or a JSON-stringified-then-converted form of an unrecognized structure.
func rawDescriptionText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return htmltext.PlainText(trimmed)
}
