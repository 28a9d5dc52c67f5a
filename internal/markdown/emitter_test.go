// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/mmap2md/pkg/types"
)

// node builds a plain-text topic.
func node(id, label string, children ...*types.Topic) *types.Topic {
	return &types.Topic{ID: id, Text: []types.Run{types.Plain(label)}, Children: children}
}

func emit(t *testing.T, cfg types.EmitConfig, doc *types.Document) (string, []types.Warning) {
	t.Helper()
	return NewEmitter(cfg).Emit(doc)
}

func defaults() types.EmitConfig { return types.DefaultEmitConfig() }

func TestEmit_MinimalMap(t *testing.T) {
	doc := types.NewDocument("p.mmap", node("r", "Project", node("a", "Task A"), node("b", "Task B")), nil)

	got, warnings := emit(t, defaults(), doc)
	assert.Equal(t, "# Project\n- Task A\n- Task B\n", got)
	assert.Empty(t, warnings)
}

func TestEmit_FormattedText(t *testing.T) {
	due := &types.Topic{ID: "d", Text: []types.Run{types.Bold("Due"), types.Plain(" soon")}}
	doc := types.NewDocument("", node("r", "Root", due), nil)

	got, _ := emit(t, defaults(), doc)
	assert.Equal(t, "# Root\n- **Due** soon\n", got)
}

func TestEmit_Notes(t *testing.T) {
	task := node("a", "Task A")
	task.Notes = []string{"remember the deadline"}
	doc := types.NewDocument("", node("r", "Project", task, node("b", "Task B")), nil)

	got, _ := emit(t, defaults(), doc)
	assert.Equal(t, "# Project\n- Task A\n  > remember the deadline\n- Task B\n", got)
}

func TestEmit_InlineRuns(t *testing.T) {
	tests := []struct {
		name string
		runs []types.Run
		want string
	}{
		{"plain", []types.Run{types.Plain("hello")}, "hello"},
		{"italic", []types.Run{types.Italic("maybe")}, "*maybe*"},
		{"bold italic", []types.Run{{Kind: types.RunBoldItalic, Text: "loud"}}, "***loud***"},
		{"link", []types.Run{types.Link("docs", "https://example.com/a")}, "[docs](https://example.com/a)"},
		{"link with spaces", []types.Run{types.Link("f", "file:///my docs/a (1).txt")}, "[f](<file:///my docs/a (1).txt>)"},
		{"empty link label", []types.Run{types.Link("", "https://x.test")}, "[https://x.test](https://x.test)"},
		{"emphasis keeps outer whitespace", []types.Run{types.Plain("a"), types.Bold(" b "), types.Plain("c")}, "a **b** c"},
		{"whitespace-only emphasis", []types.Run{types.Plain("a"), types.Bold(" "), types.Plain("b")}, "a b"},
		{"adjacent same style merged", []types.Run{types.Bold("a"), types.Bold("b")}, "**ab**"},
		{"specials in bold", []types.Run{types.Bold("2*3")}, `**2\*3**`},
		{"newline collapsed", []types.Run{types.Plain("one"), types.Plain("\n"), types.Plain("two")}, "one two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderRuns(tt.runs))
		})
	}
}

func TestEmit_DepthToIndentation(t *testing.T) {
	for _, width := range []int{2, 3, 4} {
		t.Run(fmt.Sprintf("indent %d", width), func(t *testing.T) {
			// Chain root -> L1 -> ... -> L9.
			var leaf *types.Topic
			for l := 9; l >= 1; l-- {
				n := node(fmt.Sprintf("n%d", l), fmt.Sprintf("Level %d", l))
				if leaf != nil {
					n.Children = []*types.Topic{leaf}
				}
				leaf = n
			}
			doc := types.NewDocument("", node("r", "Root", leaf), nil)

			cfg := defaults()
			cfg.IndentWidth = width
			got, _ := emit(t, cfg, doc)

			lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
			require.Len(t, lines, 10)
			for l := 1; l <= 9; l++ {
				want := strings.Repeat(" ", width*(l-1)) + fmt.Sprintf("- Level %d", l)
				assert.Equal(t, want, lines[l])
			}

			// Markdown nesting matches topic depth beyond the heading ceiling.
			depths := listItemDepths(t, got)
			for l := 1; l <= 9; l++ {
				assert.Equal(t, l, depths[fmt.Sprintf("Level %d", l)], "Level %d", l)
			}
		})
	}
}

func TestEmit_OrderPreservation(t *testing.T) {
	labels := []string{"zeta", "alpha", "mu", "beta", "omega"}
	var kids []*types.Topic
	for i, l := range labels {
		kids = append(kids, node(fmt.Sprintf("k%d", i), l))
	}
	doc := types.NewDocument("", node("r", "Root", kids...), nil)

	got, _ := emit(t, defaults(), doc)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")[1:]
	for i, l := range labels {
		assert.Equal(t, "- "+l, lines[i])
	}
}

func TestEmit_Determinism(t *testing.T) {
	a := node("a", "A [x]")
	a.Notes = []string{"n1", "n2"}
	a.Icons = []string{"prio1"}
	doc := types.NewDocument("", node("r", "Root", a, node("b", "B", node("c", "C"))), []types.Relationship{
		{ID: "r1", Source: "a", Target: "c", Label: "feeds"},
		{ID: "r2", Source: "b", Target: "gone"},
	})

	e := NewEmitter(defaults())
	first, w1 := e.Emit(doc)
	second, w2 := e.Emit(doc)
	assert.Equal(t, first, second)
	assert.Equal(t, w1, w2)
}

func TestEmit_EscapingRoundTrip(t *testing.T) {
	inputs := []string{
		`a*b_c`,
		`[link](not)`,
		`back\slash`,
		"tick`s",
		`<tag> ~~strike~~`,
		`**already bold**`,
		`AT&amp;T`,
		`plain`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			out := RenderRuns([]types.Run{types.Plain(in)})
			assert.Equal(t, in, Unescape(out))
		})
	}
}

func TestRenderRuns_EmphasisFlanking(t *testing.T) {
	tests := []struct {
		name     string
		runs     []types.Run
		want     string
		wantEmph string // text of the single emphasis node, "" for none
	}{
		{
			name:     "trailing punctuation before a letter",
			runs:     []types.Run{types.Bold("Due:"), types.Plain("soon")},
			want:     "**Due**:soon",
			wantEmph: "Due",
		},
		{
			name:     "leading punctuation after a letter",
			runs:     []types.Run{types.Plain("x"), types.Bold("(y)")},
			want:     "x(**y)**",
			wantEmph: "y)",
		},
		{
			name:     "escaped special after a letter",
			runs:     []types.Run{types.Plain("a"), types.Bold("*b")},
			want:     `a\***b**`,
			wantEmph: "b",
		},
		{
			name:     "apostrophe inside a word",
			runs:     []types.Run{types.Plain("Tom"), types.Italic("'s")},
			want:     "Tom'*s*",
			wantEmph: "s",
		},
		{
			name:     "punctuation kept inside when bounded by space",
			runs:     []types.Run{types.Plain("say "), types.Bold("(y)"), types.Plain(" now")},
			want:     "say **(y)** now",
			wantEmph: "(y)",
		},
		{
			name: "punctuation-only run between letters",
			runs: []types.Run{types.Plain("a"), types.Bold("!"), types.Plain("b")},
			want: "a!b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderRuns(tt.runs)
			assert.Equal(t, tt.want, got)

			root, src := parse(got)
			var emph []string
			walk(t, root, func(n ast.Node) {
				if n.Kind() == ast.KindEmphasis {
					emph = append(emph, string(n.Text(src)))
				}
			})
			if tt.wantEmph == "" {
				assert.Empty(t, emph)
				return
			}
			assert.Equal(t, []string{tt.wantEmph}, emph)
		})
	}
}

func TestEmit_EscapedTextIsNotMarkup(t *testing.T) {
	doc := types.NewDocument("", node("r", "Root",
		node("a", "1. not *a* list [x](y)"),
		node("b", "# not a heading"),
		node("c", "- not a bullet"),
		node("d", "> not a quote"),
	), nil)

	got, _ := emit(t, defaults(), doc)
	assert.Contains(t, got, "- 1\\. not \\*a\\* list \\[x\\](y)\n")
	assert.Contains(t, got, "- \\# not a heading\n")
	assert.Contains(t, got, "- \\- not a bullet\n")
	assert.Contains(t, got, "- \\> not a quote\n")

	root, _ := parse(got)
	lists, items := 0, 0
	walk(t, root, func(n ast.Node) {
		switch n.Kind() {
		case ast.KindList:
			lists++
		case ast.KindListItem:
			items++
		case ast.KindEmphasis, ast.KindLink, ast.KindBlockquote:
			t.Errorf("unexpected %s node in escaped output", n.Kind())
		case ast.KindHeading:
			if n.(*ast.Heading).Level != 1 {
				t.Errorf("unexpected heading level %d", n.(*ast.Heading).Level)
			}
		}
	})
	assert.Equal(t, 1, lists)
	assert.Equal(t, 4, items)
}

func TestEmit_HeadingEscapesHashes(t *testing.T) {
	doc := types.NewDocument("", node("r", "Issue #42 #"), nil)
	got, _ := emit(t, defaults(), doc)
	assert.Equal(t, "# Issue \\#42 \\#\n", got)
}

func TestEmit_RootNotesAndIcons(t *testing.T) {
	root := node("r", "Plan")
	root.Notes = []string{"overview", "", "second paragraph"}
	root.Icons = []string{"flag-red"}
	doc := types.NewDocument("", root, nil)

	got, _ := emit(t, defaults(), doc)
	assert.Equal(t, "# Plan `flag-red`\n> overview\n>\n> second paragraph\n", got)

	cfg := defaults()
	cfg.Icons = false
	got, _ = emit(t, cfg, doc)
	assert.True(t, strings.HasPrefix(got, "# Plan\n"))
}

func TestEmit_FencedNotes(t *testing.T) {
	task := node("a", "Task")
	task.Notes = []string{"uses ``` fences", "- list-like *line*"}
	doc := types.NewDocument("", node("r", "Root", task), nil)

	cfg := defaults()
	cfg.NoteStyle = types.NoteFenced
	got, _ := emit(t, cfg, doc)

	want := "# Root\n- Task\n  ````\n  uses ``` fences\n\n  - list-like *line*\n  ````\n"
	assert.Equal(t, want, got)

	root, _ := parse(got)
	blocks := 0
	walk(t, root, func(n ast.Node) {
		if n.Kind() == ast.KindFencedCodeBlock {
			blocks++
			assert.Equal(t, ast.KindListItem, n.Parent().Kind(), "fence belongs to the list item")
		}
	})
	assert.Equal(t, 1, blocks)
}

func TestEmit_NoteNestsUnderItem(t *testing.T) {
	child := node("c", "Child")
	child.Notes = []string{"child note"}
	doc := types.NewDocument("", node("r", "Root", node("p", "Parent", child), node("s", "Sibling")), nil)

	got, _ := emit(t, defaults(), doc)
	assert.Equal(t, "# Root\n- Parent\n  - Child\n    > child note\n- Sibling\n", got)

	root, src := parse(got)
	found := false
	walk(t, root, func(n ast.Node) {
		if n.Kind() != ast.KindBlockquote {
			return
		}
		found = true
		item := n.Parent()
		require.Equal(t, ast.KindListItem, item.Kind())
		assert.Equal(t, "Child", firstLine(item, src))
	})
	assert.True(t, found, "note rendered as block quote")
	assert.Equal(t, 2, listItemDepths(t, got)["Child"])
	assert.Equal(t, 1, listItemDepths(t, got)["Sibling"])
}

func TestEmit_Relationships(t *testing.T) {
	src := &types.Topic{ID: "a", Text: []types.Run{types.Bold("Design")}}
	doc := types.NewDocument("", node("r", "Root", src, node("b", "Build"), node("c", "Ship")), []types.Relationship{
		{ID: "r1", Source: "a", Target: "b", Label: "precedes"},
		{ID: "r2", Source: "b", Target: "c"},
	})

	got, warnings := emit(t, defaults(), doc)
	want := "# Root\n- **Design**\n- Build\n- Ship\n\n## Relationships\n- **Design** → Build (precedes)\n- Build → Ship\n"
	assert.Equal(t, want, got)
	assert.Empty(t, warnings)

	cfg := defaults()
	cfg.Relationships = false
	got, _ = emit(t, cfg, doc)
	assert.NotContains(t, got, RelationshipsHeading)
}

func TestEmit_UnresolvedRelationship(t *testing.T) {
	doc := types.NewDocument("", node("r", "Root", node("a", "A"), node("b", "B")), []types.Relationship{
		{ID: "r1", Source: "a", Target: "missing"},
		{ID: "r2", Source: "a", Target: "b", Label: "ok"},
		{Source: "", Target: "b"},
	})

	got, warnings := emit(t, defaults(), doc)
	assert.Equal(t, "# Root\n- A\n- B\n\n## Relationships\n- A → B (ok)\n", got)
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, types.KindUnresolvedRelationshipTarget, w.Kind)
	}
	assert.Contains(t, warnings[0].Detail, `"missing"`)
	assert.Contains(t, warnings[1].Detail, "#3")
}

func TestEmit_AllRelationshipsUnresolved(t *testing.T) {
	doc := types.NewDocument("", node("r", "Root", node("a", "A")), []types.Relationship{
		{ID: "r1", Source: "x", Target: "y"},
	})

	got, warnings := emit(t, defaults(), doc)
	assert.Equal(t, "# Root\n- A\n", got, "full hierarchy, no empty section")
	assert.Len(t, warnings, 2)
}

func TestEmit_SuppressedRelationshipsStillWarn(t *testing.T) {
	doc := types.NewDocument("", node("r", "Root", node("a", "A"), node("b", "B")), []types.Relationship{
		{ID: "r1", Source: "a", Target: "b"},
		{ID: "r2", Source: "a", Target: "gone"},
	})
	cfg := defaults()
	cfg.Relationships = false

	got, warnings := emit(t, cfg, doc)
	assert.Equal(t, "# Root\n- A\n- B\n", got)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Detail, `target topic "gone" not found`)
}

func TestEmit_EmptyDocument(t *testing.T) {
	lines, warnings := NewEmitter(types.EmitConfig{}).Lines(nil)
	assert.Nil(t, lines)
	assert.Nil(t, warnings)
}

func TestCodeSpan(t *testing.T) {
	assert.Equal(t, "`prio1`", codeSpan("prio1"))
	assert.Equal(t, "``a`b``", codeSpan("a`b"))
	assert.Equal(t, "`` `x ``", codeSpan("`x"))
}

// --- goldmark helpers ---

func parse(md string) (ast.Node, []byte) {
	src := []byte(md)
	return goldmark.New().Parser().Parse(text.NewReader(src)), src
}

func walk(t *testing.T, root ast.Node, fn func(ast.Node)) {
	t.Helper()
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			fn(n)
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
}

// firstLine returns the text of a list item's first block.
func firstLine(item ast.Node, src []byte) string {
	if item.FirstChild() == nil {
		return ""
	}
	return string(item.FirstChild().Text(src))
}

// listItemDepths maps each list item's text to the number of enclosing lists.
func listItemDepths(t *testing.T, md string) map[string]int {
	t.Helper()
	root, src := parse(md)
	depths := make(map[string]int)
	walk(t, root, func(n ast.Node) {
		if n.Kind() != ast.KindListItem {
			return
		}
		d := 0
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Kind() == ast.KindList {
				d++
			}
		}
		depths[firstLine(n, src)] = d
	})
	return depths
}
