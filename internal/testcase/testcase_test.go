package testcase

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
)

func TestGenerate_OneCasePerCriterion(t *testing.T) {
	d := story.Detail{
		Key:                "TCS-3",
		Title:              "Password reset",
		Description:        "A user can reset their password via email.",
		AcceptanceCriteria: "- Reset link is emailed within a minute\n- Link expires after 24 hours",
	}

	cases := Generate(d)
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "TCS-3-TC01" || cases[1].ID != "TCS-3-TC02" {
		t.Errorf("unexpected ids: %s, %s", cases[0].ID, cases[1].ID)
	}
	if cases[0].Expected != "Reset link is emailed within a minute" {
		t.Errorf("expected result: got %q", cases[0].Expected)
	}
	if !strings.HasPrefix(cases[0].Title, "Verify ") {
		t.Errorf("title: got %q", cases[0].Title)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	d := story.Detail{Key: "X-1", AcceptanceCriteria: "- a\n- b\n- c", Description: "body"}
	first := Generate(d)
	second := Generate(d)
	if len(first) != len(second) {
		t.Fatalf("case counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Title != second[i].Title {
			t.Errorf("case %d differs between runs", i)
		}
	}
}

func TestGenerate_BaselineWithoutCriteria(t *testing.T) {
	d := story.Detail{Key: "TCS-9", Title: "Search stories", Description: "Users can search."}
	cases := Generate(d)
	if len(cases) != 1 {
		t.Fatalf("expected 1 baseline case, got %d", len(cases))
	}
	if cases[0].Priority != "Medium" {
		t.Errorf("baseline priority: got %q", cases[0].Priority)
	}
}

func TestGenerate_EmptyStory(t *testing.T) {
	if cases := Generate(story.Detail{}); len(cases) != 0 {
		t.Errorf("empty story should yield no cases, got %d", len(cases))
	}
}

func TestValidateCase(t *testing.T) {
	ok := &Case{Title: "Verify login", Steps: []string{" step one "}, Expected: " works ", Priority: "bogus"}
	if !ValidateCase(ok) {
		t.Fatal("expected case to validate")
	}
	if ok.Steps[0] != "step one" || ok.Expected != "works" {
		t.Errorf("whitespace not normalized: %+v", ok)
	}
	if ok.Priority != "Medium" {
		t.Errorf("unknown priority should default to Medium, got %q", ok.Priority)
	}

	bad := []*Case{
		nil,
		{Title: "ab", Steps: []string{"s"}, Expected: "e"},
		{Title: "no steps", Expected: "e"},
		{Title: "no expected", Steps: []string{"s"}},
		{Title: "blank steps", Steps: []string{"  ", ""}, Expected: "e"},
	}
	for i, c := range bad {
		if ValidateCase(c) {
			t.Errorf("case %d should not validate: %+v", i, c)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	cases := []Case{
		{ID: "A-1-TC01", Title: "Verify a", Steps: []string{"do x", "do y"}, Expected: "ok", Priority: "High", Source: "A-1"},
	}
	if err := WriteCSV(&buf, cases); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[1][2] != "1. do x\n2. do y" {
		t.Errorf("steps cell: got %q", records[1][2])
	}
}

func TestSubtaskBody(t *testing.T) {
	body := SubtaskBody([]Case{
		{ID: "K-1-TC01", Title: "Verify thing", Steps: []string{"go"}, Expected: "done"},
		{ID: "K-1-TC02", Title: "Verify other", Steps: []string{"go again"}, Expected: "also done"},
	})
	if !strings.Contains(body, "K-1-TC01: Verify thing") || !strings.Contains(body, "Expected: also done") {
		t.Errorf("unexpected body:\n%s", body)
	}
}

func TestStats_Snapshot(t *testing.T) {
	s := NewStats(0)
	for _, ms := range []int64{10, 20, 30, 40, 50} {
		s.Record(ms)
	}
	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected 5 samples, got %d", snap.Count)
	}
	if snap.MinMs != 10 || snap.MaxMs != 50 {
		t.Errorf("min/max: got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 30 {
		t.Errorf("avg: got %v", snap.AvgMs)
	}
	if snap.P50Ms != 30 {
		t.Errorf("p50: got %v", snap.P50Ms)
	}
}

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(0)
	if snap := s.Snapshot(); snap.Count != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}
