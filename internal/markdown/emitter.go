// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown renders a types.Document as Markdown.
//
// The root topic becomes a level-1 heading; every other topic becomes an
// unordered list item indented by IndentWidth spaces per level below the
// root. Notes follow their topic as a block quote (or fenced block) one
// level deeper. Relationships are listed in a trailing section using topic
// display text. Traversal is strict pre-order in child order, so the same
// Document always yields byte-identical output.
package markdown

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/mmap2md/pkg/types"
)

// RelationshipsHeading titles the trailing relationships section.
const RelationshipsHeading = "## Relationships"

// Emitter renders Documents. It holds no per-document state and is safe for
// concurrent use.
type Emitter struct {
	cfg types.EmitConfig
}

// NewEmitter creates an Emitter. Zero-valued IndentWidth and NoteStyle fall
// back to their defaults.
func NewEmitter(cfg types.EmitConfig) *Emitter {
	if cfg.IndentWidth <= 0 {
		cfg.IndentWidth = types.DefaultIndentWidth
	}
	if cfg.NoteStyle == "" {
		cfg.NoteStyle = types.NoteQuote
	}
	return &Emitter{cfg: cfg}
}

// Emit renders doc and returns the Markdown text (newline-terminated) plus
// any recoverable warnings.
func (e *Emitter) Emit(doc *types.Document) (string, []types.Warning) {
	lines, warnings := e.Lines(doc)
	return strings.Join(lines, "\n") + "\n", warnings
}

// Lines renders doc as a sequence of Markdown lines without terminators.
func (e *Emitter) Lines(doc *types.Document) ([]string, []types.Warning) {
	var w writer
	if doc == nil || doc.Root == nil {
		return nil, nil
	}

	root := doc.Root
	w.line("# " + escapeHeading(e.text(root)) + e.icons(root))
	e.notes(&w, root, "")
	for _, c := range root.Children {
		e.topic(&w, c, 1)
	}

	// Dangling relationships are reported even when the section is off.
	rels, warnings := e.relationships(doc)
	if e.cfg.Relationships && len(rels) > 0 {
		w.line("")
		w.line(RelationshipsHeading)
		w.lines = append(w.lines, rels...)
	}
	return w.lines, warnings
}

// topic writes the list item for t at the given level (>= 1), its note, and
// then its children.
func (e *Emitter) topic(w *writer, t *types.Topic, level int) {
	indent := e.indent(level - 1)
	w.line(indent + "- " + escapeLeading(e.text(t)) + e.icons(t))
	e.notes(w, t, e.indent(level))
	for _, c := range t.Children {
		e.topic(w, c, level+1)
	}
}

func (e *Emitter) indent(units int) string {
	return strings.Repeat(" ", e.cfg.IndentWidth*units)
}

// text renders a topic's runs on one line.
func (e *Emitter) text(t *types.Topic) string {
	return strings.TrimSpace(RenderRuns(t.Text))
}

// icons renders a topic's icons as trailing code spans, each preceded by a
// space.
func (e *Emitter) icons(t *types.Topic) string {
	if !e.cfg.Icons || len(t.Icons) == 0 {
		return ""
	}
	var b strings.Builder
	for _, ic := range t.Icons {
		b.WriteString(" " + codeSpan(ic))
	}
	return b.String()
}

// notes writes a topic's note at the given indentation.
func (e *Emitter) notes(w *writer, t *types.Topic, indent string) {
	if !t.HasNotes() {
		return
	}
	var paras []string
	for _, p := range t.Notes {
		if p = strings.TrimSpace(collapseNewlines(p)); p != "" {
			paras = append(paras, p)
		}
	}

	if e.cfg.NoteStyle == types.NoteFenced {
		fence := fenceFor(paras)
		w.line(indent + fence)
		for i, p := range paras {
			if i > 0 {
				w.line("")
			}
			w.line(indent + p)
		}
		w.line(indent + fence)
		return
	}

	for i, p := range paras {
		if i > 0 {
			w.line(indent + ">")
		}
		w.line(indent + "> " + escapeLeading(Escape(p)))
	}
}

// relationships renders one line per relationship whose endpoints both
// resolve; the others are reported as warnings and skipped.
func (e *Emitter) relationships(doc *types.Document) ([]string, []types.Warning) {
	var lines []string
	var warnings []types.Warning
	for i, rel := range doc.Relationships {
		name := rel.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}

		src, srcOK := doc.Topic(rel.Source)
		dst, dstOK := doc.Topic(rel.Target)
		if !srcOK {
			warnings = append(warnings, unresolved(name, "source", rel.Source))
		}
		if !dstOK {
			warnings = append(warnings, unresolved(name, "target", rel.Target))
		}
		if !srcOK || !dstOK {
			continue
		}

		line := "- " + escapeLeading(strings.TrimSpace(RenderRuns(src.Text))) + " → " + strings.TrimSpace(RenderRuns(dst.Text))
		if label := strings.TrimSpace(collapseNewlines(rel.Label)); label != "" {
			line += " (" + Escape(label) + ")"
		}
		lines = append(lines, line)
	}
	return lines, warnings
}

func unresolved(rel, end, id string) types.Warning {
	return types.Warning{
		Kind:   types.KindUnresolvedRelationshipTarget,
		Detail: fmt.Sprintf("relationship %s: %s topic %q not found; relationship omitted", rel, end, id),
	}
}

// RenderRuns renders styled runs as inline Markdown. Adjacent runs of the
// same style are merged first so markers never abut (e.g. "**a****b**").
func RenderRuns(runs []types.Run) string {
	var b strings.Builder
	merged := mergeRuns(runs)
	for i, r := range merged {
		text := collapseNewlines(r.Text)
		switch r.Kind {
		case types.RunBold:
			writeEmphasis(&b, text, "**", nextRune(merged[i+1:]))
		case types.RunItalic:
			writeEmphasis(&b, text, "*", nextRune(merged[i+1:]))
		case types.RunBoldItalic:
			writeEmphasis(&b, text, "***", nextRune(merged[i+1:]))
		case types.RunLink:
			label := strings.TrimSpace(text)
			if label == "" {
				label = r.URL
			}
			b.WriteString("[" + Escape(label) + "](" + linkDestination(r.URL) + ")")
		default:
			b.WriteString(Escape(text))
		}
	}
	return b.String()
}

// nextRune returns the first character the following runs will render, as
// far as delimiter flanking is concerned: markers and link brackets count
// as punctuation. It is 0 at the end of the text.
func nextRune(rest []types.Run) rune {
	for _, r := range rest {
		text := collapseNewlines(r.Text)
		first, size := utf8.DecodeRuneInString(text)
		switch {
		case r.Kind == types.RunLink:
			return '['
		case size == 0:
			continue
		case r.Kind == types.RunPlain, unicode.IsSpace(first):
			return first
		default:
			return '*'
		}
	}
	return 0
}

// writeEmphasis wraps the non-whitespace core of text in marker. Leading
// and trailing whitespace stay outside the markers, since "** a**" is not
// emphasis; whitespace-only text is written as is.
//
// A marker touching a letter on the outside and punctuation on the inside
// would not be left- or right-flanking, so that punctuation is moved
// outside the markers ("Due:" before "soon" becomes "**Due**:soon").
func writeEmphasis(b *strings.Builder, text, marker string, next rune) {
	core := strings.TrimSpace(text)
	if core == "" {
		b.WriteString(text)
		return
	}
	start := strings.Index(text, core)
	lead, trail := text[:start], text[start+len(core):]

	var head, tail string
	if prev, _ := utf8.DecodeLastRuneInString(b.String()); lead == "" && isWordRune(prev) {
		i := strings.IndexFunc(core, isWordRune)
		if i < 0 {
			i = len(core)
		}
		head, core = core[:i], core[i:]
	}
	if trail == "" && isWordRune(next) {
		if j := strings.LastIndexFunc(core, isWordRune); j >= 0 {
			_, size := utf8.DecodeRuneInString(core[j:])
			core, tail = core[:j+size], core[j+size:]
		} else {
			core, tail = "", core
		}
	}

	b.WriteString(lead)
	b.WriteString(Escape(head))
	if core != "" {
		b.WriteString(marker)
		b.WriteString(Escape(core))
		b.WriteString(marker)
	}
	b.WriteString(Escape(tail))
	b.WriteString(trail)
}

// isWordRune reports whether r is neither whitespace nor Unicode
// punctuation or symbol, the classes CommonMark's flanking rules test.
func isWordRune(r rune) bool {
	if r == 0 || r == utf8.RuneError {
		return false
	}
	return !unicode.IsSpace(r) && !unicode.IsPunct(r) && !unicode.IsSymbol(r)
}

func mergeRuns(runs []types.Run) []types.Run {
	out := make([]types.Run, 0, len(runs))
	for _, r := range runs {
		if n := len(out); n > 0 && out[n-1].Kind == r.Kind && out[n-1].URL == r.URL {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// codeSpan wraps s in backticks, using a longer delimiter when s itself
// contains backticks.
func codeSpan(s string) string {
	delim := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return delim + " " + s + " " + delim
	}
	return delim + s + delim
}

// fenceFor returns a backtick fence longer than any backtick run in paras.
func fenceFor(paras []string) string {
	n := 3
	for _, p := range paras {
		if l := longestRun(p, '`'); l >= n {
			n = l + 1
		}
	}
	return strings.Repeat("`", n)
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			if cur > best {
				best = cur
			}
			continue
		}
		cur = 0
	}
	return best
}

// writer accumulates output lines.
type writer struct {
	lines []string
}

func (w *writer) line(s string) {
	w.lines = append(w.lines, s)
}
