package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading represents a parsed heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 0-indexed line of the heading text
	End   int // 0-indexed last line of the heading (the underline for setext headings)
}

// ExtractHeadings extracts headings from markdown content using goldmark.
// Lines that merely look like headings inside code blocks are not returned.
func ExtractHeadings(content string) []Heading {
	var headings []Heading

	source := []byte(content)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	lineStarts := computeLineStarts(content)
	lines := strings.Split(content, "\n")

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var textBuilder strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if textNode, ok := child.(*ast.Text); ok {
				textBuilder.Write(textNode.Segment.Value(source))
			}
		}

		h := Heading{
			Level: heading.Level,
			Text:  strings.TrimSpace(textBuilder.String()),
		}
		segs := heading.Lines()
		if segs.Len() == 0 {
			// Empty ATX headings ("##") carry no segment to locate them by.
			return ast.WalkContinue, nil
		}
		h.Line = offsetToLine(lineStarts, segs.At(0).Start)
		h.End = offsetToLine(lineStarts, segs.At(segs.Len()-1).Start)
		if !isATXLine(lines[h.Line]) {
			h.End++
		}

		headings = append(headings, h)
		return ast.WalkContinue, nil
	})

	return headings
}

// Section returns the body of the first heading whose text equals heading: every line after it up to, but excluding, the next heading of any
// level. Blank lines are kept verbatim. Front-matter is ignored.
func Section(content, heading string) (string, bool) {
	body := Body(content)
	lines := strings.Split(body, "\n")

	headings := ExtractHeadings(body)
	for i, h := range headings {
		if h.Text != heading {
			continue
		}
		start := h.End + 1
		stop := len(lines)
		if i+1 < len(headings) {
			stop = headings[i+1].Line
		}
		if start >= stop {
			return "", true
		}
		section := strings.Join(lines[start:stop], "\n")
		return section, true
	}
	return "", false
}

func isATXLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return len(line)-len(trimmed) <= 3 && strings.HasPrefix(trimmed, "#")
}

// computeLineStarts computes the byte offset of each line start.
func computeLineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}
