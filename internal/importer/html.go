package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLImporter handles HTML story documents.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*Draft, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	title := titleFromFilename(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	var sections []section
	current := section{}
	flush := func() {
		if current.heading != "" || strings.TrimSpace(current.text) != "" {
			sections = append(sections, current)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				flush()
				current = section{heading: textContent(n), level: level}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "li":
				if t := textContent(n); t != "" {
					appendLine(&current, "- "+t)
				}
				return
			case "p", "td", "blockquote":
				appendBlock(&current, textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flush()

	return buildDraft(title, sections), nil
}

// appendLine joins consecutive bullet lines with single newlines, keeping
// a criteria list together as one block.
func appendLine(s *section, line string) {
	if s.text != "" {
		s.text += "\n" + line
	} else {
		s.text = line
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
