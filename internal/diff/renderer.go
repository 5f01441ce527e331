// Package diff turns a correction string with inline --removed-- / ++added++
// markers into a structured annotated representation that is safe to render.
package diff

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

// Kind tags one rendered segment.
type Kind int

const (
	// KindText is literal text with no interpretation.
	KindText Kind = iota
	// KindRemoved is a span the reviewer marked as removed (--X--).
	KindRemoved
	// KindAdded is a span the reviewer marked as added (++Y++).
	KindAdded
	// KindLineBreak is an explicit line break; segment text never contains
	// raw newlines.
	KindLineBreak
)

// Segment is one piece of the rendered correction.
type Segment struct {
	Kind Kind
	Text string
}

// markers matches one removal or addition span, scanning left to right with
// the removal alternative tried first, so overlapping ambiguity resolves
// first-match-wins and runs are never reinterpreted inside one another.
// (?s) lets a span carry the text across line breaks.
var markers = regexp.MustCompile(`(?s)--(.*?)--|\+\+(.*?)\+\+`)

// Render parses the correction into segments. It is pure and deterministic:
// no external state, same input always yields the same segments. Unterminated
// markers stay literal text.
func Render(correction string) []Segment {
	var segs []Segment
	rest := correction
	for rest != "" {
		loc := markers.FindStringSubmatchIndex(rest)
		if loc == nil {
			segs = appendText(segs, KindText, rest)
			break
		}
		segs = appendText(segs, KindText, rest[:loc[0]])
		if loc[2] >= 0 {
			segs = appendText(segs, KindRemoved, rest[loc[2]:loc[3]])
		} else {
			segs = appendText(segs, KindAdded, rest[loc[4]:loc[5]])
		}
		rest = rest[loc[1]:]
	}
	return segs
}

// appendText splits the text on newlines, so the output carries explicit
// line-break tokens instead of raw newlines.
func appendText(segs []Segment, kind Kind, text string) []Segment {
	for i, part := range strings.Split(text, "\n") {
		if i > 0 {
			segs = append(segs, Segment{Kind: KindLineBreak})
		}
		if part != "" {
			segs = append(segs, Segment{Kind: kind, Text: part})
		}
	}
	return segs
}

// HTML renders segments to markup. Every text segment is escaped here, after
// marker scanning over the raw string; the only tags in the output are the
// two span wrappers and <br>.
func HTML(segs []Segment) template.HTML {
	var b strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case KindLineBreak:
			b.WriteString("<br>")
		case KindRemoved:
			b.WriteString(`<span class="bg-removed px-1 rounded">`)
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString("</span>")
		case KindAdded:
			b.WriteString(`<span class="bg-added px-1 rounded">`)
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString("</span>")
		default:
			b.WriteString(html.EscapeString(s.Text))
		}
	}
	return template.HTML(b.String())
}

// RenderHTML is the render pipeline in one call.
func RenderHTML(correction string) template.HTML {
	return HTML(Render(correction))
}
