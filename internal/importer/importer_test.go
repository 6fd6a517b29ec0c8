package importer

import (
	"strings"
	"testing"
)

func TestTextImporter_TitleAndMarkerSplit(t *testing.T) {
	input := "Password reset story\n\nUsers can reset passwords.\nIt works via email.\n\nAcceptance Criteria:\n- link arrives\n- link expires"
	p := &TextImporter{}
	draft, err := p.Import(strings.NewReader(input), "story.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.Title != "Password reset story" {
		t.Errorf("title: got %q", draft.Title)
	}
	if draft.Description != "Users can reset passwords.\nIt works via email." {
		t.Errorf("description: got %q", draft.Description)
	}
	if draft.AcceptanceCriteria != "- link arrives\n- link expires" {
		t.Errorf("acceptance criteria: got %q", draft.AcceptanceCriteria)
	}
}

func TestTextImporter_NoMarker(t *testing.T) {
	p := &TextImporter{}
	draft, err := p.Import(strings.NewReader("Just one body line"), "note.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Title != "note" {
		t.Errorf("title should fall back to filename, got %q", draft.Title)
	}
	if draft.AcceptanceCriteria != "" {
		t.Errorf("expected empty criteria, got %q", draft.AcceptanceCriteria)
	}
	if draft.Description != "Just one body line" {
		t.Errorf("description: got %q", draft.Description)
	}
}

func TestMarkdownImporter_HeadingSections(t *testing.T) {
	input := `# Login story

As a user I can log in.

## Context

Single sign-on is out of scope.

## Acceptance Criteria

- valid credentials succeed
- invalid credentials show an error

## Notes

Some closing notes.
`
	p := &MarkdownImporter{}
	draft, err := p.Import(strings.NewReader(input), "login.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.Title != "Login story" {
		t.Errorf("title: got %q", draft.Title)
	}
	if draft.AcceptanceCriteria != "- valid credentials succeed\n- invalid credentials show an error" {
		t.Errorf("acceptance criteria: got %q", draft.AcceptanceCriteria)
	}
	if !strings.Contains(draft.Description, "As a user I can log in.") {
		t.Errorf("description missing intro: %q", draft.Description)
	}
	if !strings.Contains(draft.Description, "Context") || !strings.Contains(draft.Description, "Notes") {
		t.Errorf("description missing non-criteria sections: %q", draft.Description)
	}
	if strings.Contains(draft.Description, "valid credentials succeed") {
		t.Errorf("criteria leaked into description: %q", draft.Description)
	}
}

func TestHTMLImporter_Sections(t *testing.T) {
	input := `<html><head><title>Checkout story</title></head><body>
<p>Users can pay by card.</p>
<h2>Acceptance Criteria</h2>
<ul><li>card is charged once</li><li>receipt is emailed</li></ul>
<h2>Open questions</h2>
<p>Refunds?</p>
</body></html>`
	p := &HTMLImporter{}
	draft, err := p.Import(strings.NewReader(input), "checkout.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.Title != "Checkout story" {
		t.Errorf("title: got %q", draft.Title)
	}
	if draft.AcceptanceCriteria != "- card is charged once\n- receipt is emailed" {
		t.Errorf("acceptance criteria: got %q", draft.AcceptanceCriteria)
	}
	if !strings.Contains(draft.Description, "Users can pay by card.") {
		t.Errorf("description: got %q", draft.Description)
	}
	if strings.Contains(draft.Description, "card is charged once") {
		t.Errorf("criteria leaked into description: %q", draft.Description)
	}
}

func TestHTMLImporter_SubsectionsStayInCriteria(t *testing.T) {
	input := `<h2>Acceptance criteria</h2><h3>Happy path</h3><ul><li>works</li></ul><h2>Other</h2><p>x</p>`
	p := &HTMLImporter{}
	draft, err := p.Import(strings.NewReader(input), "s.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(draft.AcceptanceCriteria, "- works") {
		t.Errorf("nested section should stay in criteria: %q", draft.AcceptanceCriteria)
	}
	if !strings.Contains(draft.Description, "Other") {
		t.Errorf("sibling heading should end the criteria span: %q", draft.Description)
	}
}

func TestForFile(t *testing.T) {
	// Every extension ForFile dispatches on must also pass the upload
	// handler's extension check.
	for _, name := range []string{"a.txt", "b.md", "b2.markdown", "c.html", "d.docx", "e.pdf", "F.HTM"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): unexpected error %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = false", name)
		}
	}
	if _, err := ForFile("story.exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
