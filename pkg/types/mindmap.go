// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the neutral mind-map data model shared by the
// container reader and the Markdown emitter, along with conversion
// configuration and the error taxonomy.
//
// Nothing in this package knows about vendor XML element names; the
// container package maps those onto these types once, at read time.
package types

import "strings"

// RunKind tags a styled text run.
type RunKind string

const (
	RunPlain      RunKind = "plain"
	RunBold       RunKind = "bold"
	RunItalic     RunKind = "italic"
	RunBoldItalic RunKind = "bold_italic"
	RunLink       RunKind = "link"
)

// Run is one styled fragment of topic or note text. Runs of a topic never
// overlap; concatenating their Text reconstructs the full topic text.
type Run struct {
	Kind RunKind `json:"kind" yaml:"kind"`
	Text string  `json:"text" yaml:"text"`

	// URL is set only for RunLink.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Plain returns an unstyled run.
func Plain(text string) Run { return Run{Kind: RunPlain, Text: text} }

// Bold returns a bold run.
func Bold(text string) Run { return Run{Kind: RunBold, Text: text} }

// Italic returns an italic run.
func Italic(text string) Run { return Run{Kind: RunItalic, Text: text} }

// Link returns a hyperlink run.
func Link(text, url string) Run { return Run{Kind: RunLink, Text: text, URL: url} }

// Topic is a single node of the mind-map hierarchy. Level is not stored; it
// is the depth at which the topic is reached during traversal.
type Topic struct {
	// ID is the source document's object identifier (OId). Unique within
	// a Document.
	ID string `json:"id" yaml:"id"`

	// Text is the display text as an ordered sequence of runs.
	Text []Run `json:"text" yaml:"text"`

	// Notes holds the attached note, one entry per paragraph. Nil when the
	// topic has no note.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Icons lists textual icon annotations (e.g. "prio1", "flag-red").
	Icons []string `json:"icons,omitempty" yaml:"icons,omitempty"`

	// Children are the subtopics in authoring order.
	Children []*Topic `json:"children,omitempty" yaml:"children,omitempty"`
}

// PlainText returns the concatenated text of all runs.
func (t *Topic) PlainText() string {
	var b strings.Builder
	for _, r := range t.Text {
		b.WriteString(r.Text)
	}
	return b.String()
}

// HasNotes reports whether the topic carries a non-empty note.
func (t *Topic) HasNotes() bool {
	for _, p := range t.Notes {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// Relationship is a labeled, directed cross-link between two topics. It is
// not part of the tree.
type Relationship struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Document is one parsed mind map. It is built once by the container reader
// and treated as immutable afterwards.
type Document struct {
	// Source is the path the document was read from.
	Source string `json:"source" yaml:"source"`

	Root          *Topic         `json:"root" yaml:"root"`
	Relationships []Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`

	topics map[string]*Topic
}

// NewDocument builds a Document around root, indexing every topic in the
// tree by ID. When two topics share an ID the first one in pre-order wins.
func NewDocument(source string, root *Topic, rels []Relationship) *Document {
	d := &Document{
		Source:        source,
		Root:          root,
		Relationships: rels,
		topics:        make(map[string]*Topic),
	}
	d.index(root)
	return d
}

func (d *Document) index(t *Topic) {
	if t == nil {
		return
	}
	if t.ID != "" {
		if _, ok := d.topics[t.ID]; !ok {
			d.topics[t.ID] = t
		}
	}
	for _, c := range t.Children {
		d.index(c)
	}
}

// Topic looks up a topic by ID.
func (d *Document) Topic(id string) (*Topic, bool) {
	t, ok := d.topics[id]
	return t, ok
}

// TopicCount returns the number of indexed topics.
func (d *Document) TopicCount() int {
	return len(d.topics)
}
