// Package adf models Atlassian Document Format trees and renders them to
// plain text. Every function here is total: malformed or truncated input
// degrades to empty output, never to an error.
package adf

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Node is one node of an ADF tree. Any node type we don't recognize is
// treated as a generic container over Content.
type Node struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Attrs   map[string]any  `json:"attrs,omitempty"`
	Marks   json.RawMessage `json:"marks,omitempty"`
	Content []*Node         `json:"content,omitempty"`
}

// Doc is the root of an ADF document.
type Doc struct {
	Version int     `json:"version,omitempty"`
	Type    string  `json:"type,omitempty"`
	Content []*Node `json:"content,omitempty"`
}

// Decode interprets raw JSON as an ADF document. It accepts either the
// document object itself or a JSON string that decodes into one — exactly
// one level of string wrapping; anything deeper falls through to the
// caller's plain-text handling.
func Decode(raw []byte) (*Doc, bool) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if len(s) == 0 || s[0] != '{' {
			return nil, false
		}
		raw = []byte(s)
	}

	if raw[0] != '{' {
		return nil, false
	}
	var doc Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if len(doc.Content) == 0 {
		return nil, false
	}
	return &doc, true
}

// RenderNode converts a node to plain text.
//
// text nodes render their literal string. Paragraphs concatenate their
// children. Lists join their items with newlines. List items join their
// children with spaces and take a "- " prefix when non-empty. Anything
// else with children behaves like a list; anything without renders empty.
func RenderNode(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case "text":
		return n.Text
	case "paragraph":
		var b strings.Builder
		for _, c := range n.Content {
			b.WriteString(RenderNode(c))
		}
		return b.String()
	case "bulletList", "orderedList":
		return renderJoined(n.Content, "\n")
	case "listItem":
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			parts = append(parts, RenderNode(c))
		}
		item := strings.TrimSpace(strings.Join(parts, " "))
		if item == "" {
			return ""
		}
		return "- " + item
	default:
		if len(n.Content) > 0 {
			return renderJoined(n.Content, "\n")
		}
		if n.Text != "" {
			return n.Text
		}
		return ""
	}
}

func renderJoined(nodes []*Node, sep string) string {
	var b strings.Builder
	for _, c := range nodes {
		s := RenderNode(c)
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s)
	}
	return b.String()
}

// SectionSplit holds the two plain-text blocks derived from one document.
type SectionSplit struct {
	Description        string
	AcceptanceCriteria string
}

// boundaryRe matches a rendered top-level node that is exactly an
// "Acceptance Criteria" heading, optionally with a trailing colon.
var boundaryRe = regexp.MustCompile(`(?i)^acceptance criteria:?$`)

// Split walks the top-level content in order, routing rendered text before
// the first "Acceptance Criteria" boundary node into Description and text
// after it into AcceptanceCriteria. The boundary node itself is discarded;
// with no boundary everything is description. Source order is preserved.
func Split(doc *Doc) SectionSplit {
	var out SectionSplit
	if doc == nil {
		return out
	}

	var desc, ac []string
	inAC := false
	for _, n := range doc.Content {
		text := strings.TrimSpace(RenderNode(n))
		if !inAC && boundaryRe.MatchString(text) {
			inAC = true
			continue
		}
		if text == "" {
			continue
		}
		if inAC {
			ac = append(ac, text)
		} else {
			desc = append(desc, text)
		}
	}

	out.Description = strings.Join(desc, "\n")
	out.AcceptanceCriteria = strings.Join(ac, "\n")
	return out
}
