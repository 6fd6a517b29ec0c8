package importer

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownImporter handles Markdown stories using goldmark.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (*Draft, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	title := titleFromFilename(filename)
	titleSet := false
	var sections []section
	current := section{}
	flush := func() {
		if current.heading != "" || strings.TrimSpace(current.text) != "" {
			sections = append(sections, current)
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flush()
			headText := string(node.Text(src))
			if node.Level == 1 && !titleSet {
				// The first h1 is the story title, not a section.
				title = headText
				titleSet = true
				current = section{}
				continue
			}
			current = section{heading: headText, level: node.Level}

		case *ast.List:
			// Bullet lines keep their markers so acceptance criteria
			// round-trip as "- item" lines.
			var items []string
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				if t := extractText(li, src); t != "" {
					items = append(items, "- "+t)
				}
			}
			appendBlock(&current, strings.Join(items, "\n"))

		default:
			appendBlock(&current, extractText(n, src))
		}
	}
	flush()

	return buildDraft(title, sections), nil
}

func appendBlock(s *section, block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	if s.text != "" {
		s.text += "\n\n" + block
	} else {
		s.text = block
	}
}

// extractText gets the text content of a goldmark AST node. Inline
// children carry the same bytes a block's Lines() cover, so blocks with
// children read from the children and only childless blocks (code blocks,
// thematic breaks) fall back to their raw lines.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.ChildCount() == 0 && n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
