package parser

import "testing"

func TestExtractHeadings(t *testing.T) {
	content := "# Title\n\nText\n\n## Idea Description\n\n```\n## not a heading\n```\n\nSetext\n------\n"

	headings := ExtractHeadings(content)
	if len(headings) != 3 {
		t.Fatalf("expected 3 headings, got %d: %#v", len(headings), headings)
	}

	want := []Heading{
		{Level: 1, Text: "Title", Line: 0, End: 0},
		{Level: 2, Text: "Idea Description", Line: 4, End: 4},
		{Level: 2, Text: "Setext", Line: 10, End: 11},
	}
	for i, h := range want {
		if headings[i] != h {
			t.Fatalf("heading %d = %#v, want %#v", i, headings[i], h)
		}
	}
}

func TestSection(t *testing.T) {
	content := `---
idea: Beta
---

# Beta

## Idea Description

Speed up training.

Second paragraph.
## Validation Criteria

- [ ] Benchmark
`

	got, ok := Section(content, "Idea Description")
	if !ok {
		t.Fatal("expected section to be found")
	}
	if want := "\nSpeed up training.\n\nSecond paragraph."; got != want {
		t.Fatalf("Section() = %q, want %q", got, want)
	}

	if _, ok := Section(content, "Validation"); ok {
		t.Fatal("a heading prefix must not match")
	}

	got, ok = Section(content, "Validation Criteria")
	if !ok {
		t.Fatal("expected Validation Criteria to be found")
	}
	if want := "\n- [ ] Benchmark\n"; got != want {
		t.Fatalf("Section() = %q, want %q", got, want)
	}

	if _, ok := Section(content, "Missing"); ok {
		t.Fatal("expected missing section to report false")
	}
}

func TestSectionIgnoresCodeFences(t *testing.T) {
	content := "## Summary\n\n```md\n## Details\n```\nafter\n## Details\nreal\n"

	got, ok := Section(content, "Summary")
	if !ok {
		t.Fatal("expected section")
	}
	if want := "\n```md\n## Details\n```\nafter"; got != want {
		t.Fatalf("Section() = %q, want %q", got, want)
	}

	got, ok = Section(content, "Details")
	if !ok || got != "real\n" {
		t.Fatalf("Section(Details) = %q, %v", got, ok)
	}
}

func TestSectionEmpty(t *testing.T) {
	got, ok := Section("## A\n## B\n", "A")
	if !ok || got != "" {
		t.Fatalf("Section() = %q, %v", got, ok)
	}
}

func TestSectionSkipsHeadingsWithSamePrefix(t *testing.T) {
	content := "## Validation Summary (old)\nstale\n\n## Validation Summary\ncurrent\n"

	got, ok := Section(content, "Validation Summary")
	if !ok || got != "current\n" {
		t.Fatalf("Section() = %q, %v", got, ok)
	}
}
