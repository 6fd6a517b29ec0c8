package importer

import (
	"bufio"
	"io"
	"strings"
)

// TextImporter handles pasted plain text. The first line becomes the title
// when it reads like one; a standalone "Acceptance Criteria" line splits
// the rest.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*Draft, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	title := titleFromFilename(filename)
	body := lines

	// A short first line followed by a blank line is the story title.
	if len(lines) >= 2 && strings.TrimSpace(lines[1]) == "" {
		first := strings.TrimSpace(lines[0])
		if first != "" && len(first) <= 120 && !markerLineRe.MatchString(first) {
			title = first
			body = lines[2:]
		}
	}

	description, criteria := splitMarkedText(strings.Join(body, "\n"))
	return &Draft{
		Title:              title,
		Description:        description,
		AcceptanceCriteria: criteria,
	}, nil
}
