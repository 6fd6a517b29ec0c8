// Package importer turns pasted or uploaded story documents (.txt, .md,
// .html, .docx, .pdf) into a story draft: title, description, and the
// acceptance-criteria section when the document carries one.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// Draft is an imported user story, ready to be reviewed or pushed to Jira.
type Draft struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
}

// Importer converts raw document bytes into a story draft.
type Importer interface {
	Import(r io.Reader, filename string) (*Draft, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// section is one heading-delimited stretch of an imported document, in
// document order.
type section struct {
	heading string
	level   int
	text    string
}

var acHeadingRe = regexp.MustCompile(`(?i)acceptance\s+criteria`)

// markerLineRe matches a standalone "Acceptance Criteria" line inside
// heading-less text, the same boundary the structured-document splitter
// recognizes.
var markerLineRe = regexp.MustCompile(`(?i)^acceptance criteria:?$`)

// buildDraft assembles a draft from flattened sections. A section whose
// heading names the acceptance criteria claims its own text plus every
// following section nested below it; everything else is description.
func buildDraft(title string, sections []section) *Draft {
	d := &Draft{Title: strings.TrimSpace(title)}

	var desc, ac []string
	acLevel := 0
	inAC := false
	for _, s := range sections {
		if inAC && s.heading != "" && s.level <= acLevel {
			inAC = false
		}
		if !inAC && acHeadingRe.MatchString(s.heading) {
			inAC = true
			acLevel = s.level
			if t := strings.TrimSpace(s.text); t != "" {
				ac = append(ac, t)
			}
			continue
		}

		block := strings.TrimSpace(s.text)
		if s.heading != "" && !inAC {
			if block != "" {
				block = s.heading + "\n" + block
			} else {
				block = s.heading
			}
		}
		if block == "" {
			continue
		}
		if inAC {
			ac = append(ac, block)
		} else {
			desc = append(desc, block)
		}
	}

	d.Description = strings.Join(desc, "\n\n")
	d.AcceptanceCriteria = strings.Join(ac, "\n")
	return d
}

// splitMarkedText splits heading-less plain text on a standalone
// "Acceptance Criteria" marker line.
func splitMarkedText(text string) (description, criteria string) {
	var desc, ac []string
	inAC := false
	for _, line := range strings.Split(text, "\n") {
		if !inAC && markerLineRe.MatchString(strings.TrimSpace(line)) {
			inAC = true
			continue
		}
		if inAC {
			ac = append(ac, line)
		} else {
			desc = append(desc, line)
		}
	}
	return strings.TrimSpace(strings.Join(desc, "\n")), strings.TrimSpace(strings.Join(ac, "\n"))
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
