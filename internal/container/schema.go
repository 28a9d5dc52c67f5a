// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/mmap2md/pkg/types"
)

// MindManager element and attribute names. Namespaces are ignored; only
// local names are matched.
const (
	elOneTopic      = "OneTopic"
	elTopic         = "Topic"
	elText          = "Text"
	elPlainText     = "PlainText"
	elParagraph     = "Paragraph"
	elFont          = "Font"
	elHyperlink     = "Hyperlink"
	elNotesGroup    = "NotesGroup"
	elNotesXhtml    = "NotesXhtmlData"
	elIconsGroup    = "IconsGroup"
	elIcons         = "Icons"
	elIcon          = "Icon"
	elRelationships = "Relationships"
	elRelationship  = "Relationship"
	elConnGroup     = "ConnectionGroup"
	elConnection    = "Connection"
	elObjectRef     = "ObjectReference"

	attrOId       = "OId"
	attrOIdRef    = "OIdRef"
	attrPlainText = "PlainText"
	attrBold      = "Bold"
	attrItalic    = "Italic"
	attrURL       = "Url"
	attrIconType  = "IconType"
	attrIndex     = "Index"
	attrPreview   = "PreviewPlainText"
	attrURI       = "Uri"

	archiveScheme = "mmarch://"
	iconURNPrefix = "urn:mindjet:"
)

// childContainers lists, in emission order, the elements whose Topic
// children become a topic's children.
var childContainers = []string{"SubTopics", "LeftTopicGroup", "RightTopicGroup", "FloatingTopics"}

// adapter translates the vendor element tree into the neutral model.
type adapter struct {
	path string
	res  resources
	seen map[string]bool
	seq  int
}

func newAdapter(path string, res resources) *adapter {
	return &adapter{path: path, res: res, seen: make(map[string]bool)}
}

func (a *adapter) document(root *element) (*types.Document, error) {
	central := root.path(elOneTopic, elTopic)
	if central == nil {
		if one := root.find(elOneTopic); one != nil {
			central = one.child(elTopic)
		}
	}
	if central == nil && root.name == elTopic {
		central = root
	}
	if central == nil {
		central = root.find(elTopic)
	}
	if central == nil {
		return nil, types.NewConversionError(types.KindMissingTopicDocument, a.path,
			"topic document contains no Topic element", nil)
	}

	top, err := a.topic(central)
	if err != nil {
		return nil, err
	}

	return types.NewDocument(a.path, top, a.relationships(root)), nil
}

func (a *adapter) topic(el *element) (*types.Topic, error) {
	t := &types.Topic{ID: a.topicID(el)}

	runs := textRuns(el.child(elText))
	if len(runs) == 0 {
		ce := types.NewConversionError(types.KindMissingMandatoryField, a.path,
			fmt.Sprintf("topic %q has no text", t.ID), nil)
		ce.Line = el.line
		return nil, ce
	}
	if url := strings.TrimSpace(el.child(elHyperlink).attr(attrURL)); url != "" {
		runs = []types.Run{types.Link(joinRuns(runs), url)}
	}
	t.Text = runs

	t.Notes = a.notes(el.child(elNotesGroup))
	t.Icons = icons(el.child(elIconsGroup))

	for _, name := range childContainers {
		for _, group := range el.childrenNamed(name) {
			for _, c := range group.childrenNamed(elTopic) {
				child, err := a.topic(c)
				if err != nil {
					return nil, err
				}
				t.Children = append(t.Children, child)
			}
		}
	}
	return t, nil
}

// topicID returns the element's OId, or a synthetic id when it is missing
// or already taken, so ids stay unique within the Document.
func (a *adapter) topicID(el *element) string {
	id := strings.TrimSpace(el.attr(attrOId))
	if id == "" || a.seen[id] {
		for {
			a.seq++
			id = "topic-" + strconv.Itoa(a.seq)
			if !a.seen[id] {
				break
			}
		}
	}
	a.seen[id] = true
	return id
}

// textRuns extracts the styled runs of a Text element. Sources are tried in
// order: the PlainText attribute, a PlainText child, Paragraph fragments,
// then the element's own character data.
func textRuns(text *element) []types.Run {
	if text == nil {
		return nil
	}
	font := text.child(elFont)
	whole := styleKind(isTrue(font.attr(attrBold)), isTrue(font.attr(attrItalic)))

	if s := strings.TrimSpace(text.attr(attrPlainText)); s != "" {
		return []types.Run{{Kind: whole, Text: s}}
	}
	if s := strings.TrimSpace(text.child(elPlainText).charData()); s != "" {
		return []types.Run{{Kind: whole, Text: s}}
	}

	var runs []types.Run
	paragraphs := 0
	for _, p := range text.childrenNamed(elParagraph) {
		frags := paragraphRuns(p, font)
		if len(frags) == 0 {
			continue
		}
		if paragraphs > 0 {
			runs = append(runs, types.Plain("\n"))
		}
		runs = append(runs, frags...)
		paragraphs++
	}
	if len(runs) > 0 {
		return runs
	}

	if s := strings.TrimSpace(text.charData()); s != "" {
		return []types.Run{{Kind: whole, Text: s}}
	}
	return nil
}

// paragraphRuns collects the nested Text fragments of a Paragraph, joined
// by single spaces. A paragraph without fragments contributes its own
// character data.
func paragraphRuns(p *element, font *element) []types.Run {
	baseBold, baseItalic := isTrue(font.attr(attrBold)), isTrue(font.attr(attrItalic))

	var runs []types.Run
	for _, frag := range p.findAll(elText) {
		s := strings.TrimSpace(frag.charData())
		if s == "" {
			continue
		}
		ff := frag.child(elFont)
		bold := baseBold || isTrue(frag.attr(attrBold)) || isTrue(ff.attr(attrBold))
		italic := baseItalic || isTrue(frag.attr(attrItalic)) || isTrue(ff.attr(attrItalic))

		if len(runs) > 0 {
			runs = append(runs, types.Plain(" "))
		}
		if url := strings.TrimSpace(frag.child(elHyperlink).attr(attrURL)); url != "" {
			runs = append(runs, types.Link(s, url))
			continue
		}
		runs = append(runs, types.Run{Kind: styleKind(bold, italic), Text: s})
	}
	if len(runs) == 0 {
		if s := strings.TrimSpace(p.charData()); s != "" {
			runs = append(runs, types.Run{Kind: styleKind(baseBold, baseItalic), Text: s})
		}
	}
	return runs
}

func styleKind(bold, italic bool) types.RunKind {
	switch {
	case bold && italic:
		return types.RunBoldItalic
	case bold:
		return types.RunBold
	case italic:
		return types.RunItalic
	default:
		return types.RunPlain
	}
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func joinRuns(runs []types.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// icons returns normalized icon names: the mindjet URN prefix is dropped
// and the rest lowercased.
func icons(group *element) []string {
	var out []string
	for _, ic := range group.path(elIcons).childrenNamed(elIcon) {
		name := strings.TrimSpace(ic.attr(attrIconType))
		if name == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), iconURNPrefix) {
			name = name[len(iconURNPrefix):]
		}
		out = append(out, strings.ToLower(name))
	}
	return out
}

// connectionRef returns the topic a Connection points at. MindManager
// writes it on a nested ObjectReference; older files put OIdRef on the
// Connection itself.
func connectionRef(conn *element) string {
	if ref := strings.TrimSpace(conn.child(elObjectRef).attr(attrOIdRef)); ref != "" {
		return ref
	}
	return strings.TrimSpace(conn.attr(attrOIdRef))
}

// relationships collects every Relationship element. Endpoints are taken
// from ConnectionGroup Index 0 (source) and 1 (target); when Index is
// absent, group order decides.
func (a *adapter) relationships(root *element) []types.Relationship {
	var rels []types.Relationship
	for _, group := range root.findAll(elRelationships) {
		for _, r := range group.childrenNamed(elRelationship) {
			rel := types.Relationship{ID: strings.TrimSpace(r.attr(attrOId))}

			type endpoint struct {
				index int
				ref   string
			}
			var ends []endpoint
			for i, cg := range r.childrenNamed(elConnGroup) {
				idx := i
				if v, err := strconv.Atoi(strings.TrimSpace(cg.attr(attrIndex))); err == nil {
					idx = v
				}
				ends = append(ends, endpoint{index: idx, ref: connectionRef(cg.child(elConnection))})
			}
			sort.SliceStable(ends, func(i, j int) bool { return ends[i].index < ends[j].index })
			if len(ends) > 0 {
				rel.Source = ends[0].ref
			}
			if len(ends) > 1 {
				rel.Target = ends[1].ref
			}

			rel.Label = strings.TrimSpace(joinRuns(textRuns(r.child(elText))))
			rels = append(rels, rel)
		}
	}
	return rels
}
