package postprocess

import (
	"regexp"
	"strconv"
	"strings"
)

type markerKind int

const (
	kindNone markerKind = iota
	kindHeading
	kindNumbered
	kindBullet
)

// markerStyle is one level of section marker. depth is the heading level and zero for lists.
type markerStyle struct {
	kind  markerKind
	depth int
}

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	numberedRe = regexp.MustCompile(`^(\d{1,2})[.)]\s+(.+)$`)
	bulletRe   = regexp.MustCompile(`^[-*•]\s+(.+)$`)
)

// markerOrder runs from the outermost level inwards.
var markerOrder = []markerStyle{
	{kindHeading, 1}, {kindHeading, 2}, {kindHeading, 3},
	{kindHeading, 4}, {kindHeading, 5}, {kindHeading, 6},
	{kind: kindNumbered}, {kind: kindBullet},
}

const maxOutroLines = 2

type section struct {
	// marker is the heading line prefix without the title, e.g. "### " or "2. ".
	marker string
	title  string
	body   []string
}

// document is LM output split into top-level sections. Only markers at
// column zero in the chosen style start a section; everything else is body.
type document struct {
	style    markerStyle
	intro    []string
	sections []section
	outro    []string
}

// detectStyle picks the marker level that delimits sections. Without names the
// outermost level present wins; with names it is the outermost level whose titles
// mention a candidate, so checklists and steps nested under tool headings stay body.
func detectStyle(lines []string, names []string) markerStyle {
	var present []markerStyle
	for _, style := range markerOrder {
		named := false
		found := false
		for _, l := range lines {
			_, title, ok := matchMarker(style, l)
			if !ok {
				continue
			}
			found = true
			if namesCandidate(title, names) {
				named = true
				break
			}
		}
		if named {
			return style
		}
		if found {
			present = append(present, style)
		}
	}
	if len(present) == 0 {
		return markerStyle{}
	}
	return present[0]
}

func matchMarker(style markerStyle, line string) (marker, title string, ok bool) {
	var m []string
	switch style.kind {
	case kindHeading:
		m = headingRe.FindStringSubmatch(line)
		if m != nil && len(m[1]) != style.depth {
			m = nil
		}
	case kindNumbered:
		m = numberedRe.FindStringSubmatch(line)
	case kindBullet:
		m = bulletRe.FindStringSubmatch(line)
	}
	if m == nil {
		return "", "", false
	}
	title = m[len(m)-1]
	return strings.TrimSuffix(line, title), title, true
}

func parse(text string, names []string) document {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	doc := document{style: detectStyle(lines, names)}
	if doc.style.kind == kindNone {
		doc.intro = lines
		return doc
	}
	for _, l := range lines {
		if marker, title, ok := matchMarker(doc.style, l); ok {
			doc.sections = append(doc.sections, section{marker: marker, title: title})
			continue
		}
		if len(doc.sections) == 0 {
			doc.intro = append(doc.intro, l)
			continue
		}
		last := &doc.sections[len(doc.sections)-1]
		last.body = append(last.body, l)
	}
	doc.splitOutro()
	return doc
}

// splitOutro moves a short closing paragraph after the last section out of its body.
func (d *document) splitOutro() {
	if len(d.sections) == 0 {
		return
	}
	last := &d.sections[len(d.sections)-1]
	body := trimBlank(last.body)
	blank := -1
	for i := len(body) - 1; i >= 0; i-- {
		if strings.TrimSpace(body[i]) == "" {
			blank = i
			break
		}
	}
	if blank <= 0 || len(body)-blank-1 > maxOutroLines {
		last.body = body
		return
	}
	for _, l := range body[blank+1:] {
		if l == "" || l[0] == ' ' || l[0] == '\t' || bulletRe.MatchString(l) || numberedRe.MatchString(l) {
			last.body = body
			return
		}
	}
	d.outro = body[blank+1:]
	last.body = body[:blank]
}

func (d document) render() string {
	var b strings.Builder
	write := func(lines []string) {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	write(trimBlank(d.intro))
	n := 0
	for _, s := range d.sections {
		if b.Len() > 0 && d.style.kind != kindBullet {
			b.WriteByte('\n')
		}
		n++
		marker := s.marker
		if d.style.kind == kindNumbered {
			marker = renumber(marker, n)
		}
		b.WriteString(marker + s.title + "\n")
		write(trimBlank(s.body))
	}
	if outro := trimBlank(d.outro); len(outro) > 0 {
		b.WriteByte('\n')
		write(outro)
	}
	return strings.TrimSpace(b.String())
}

func renumber(marker string, n int) string {
	m := numberedRe.FindStringSubmatch(marker + "x")
	if m == nil {
		return marker
	}
	return strconv.Itoa(n) + strings.TrimPrefix(marker, m[1])
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
