// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"strings"
)

// blockElements start and end a paragraph when flattening XHTML notes.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "ul": true, "ol": true, "table": true, "body": true,
}

// notes resolves a topic's note into paragraphs. Sources are tried in
// order: an archive entry referenced by Uri, the inline XHTML body, then
// the PreviewPlainText attribute. A nil result means the topic has no note.
func (a *adapter) notes(group *element) []string {
	data := group.child(elNotesXhtml)
	if data == nil {
		return nil
	}

	if uri := strings.TrimSpace(data.attr(attrURI)); strings.HasPrefix(strings.ToLower(uri), archiveScheme) {
		if raw, ok := a.res.read(uri[len(archiveScheme):]); ok {
			if paras := resourceParagraphs(raw); len(paras) > 0 {
				return paras
			}
		}
	}

	var body *element
	for _, c := range data.children {
		if !c.isText() {
			body = c
			break
		}
	}
	if body != nil {
		if paras := xhtmlParagraphs(body); len(paras) > 0 {
			return paras
		}
	}

	if paras := textParagraphs(data.attr(attrPreview)); len(paras) > 0 {
		return paras
	}
	return textParagraphs(data.charData())
}

// resourceParagraphs reads a note stored as its own archive entry: XHTML
// when it parses as XML, plain text otherwise.
func resourceParagraphs(raw []byte) []string {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(raw, utf8BOM))
	if len(trimmed) > 0 && trimmed[0] == '<' {
		if tree, err := parseTree(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM))); err == nil {
			return xhtmlParagraphs(tree)
		}
	}
	return textParagraphs(string(raw))
}

// xhtmlParagraphs flattens an XHTML fragment to one string per block.
// Inline markup is dropped; whitespace within a block is collapsed.
func xhtmlParagraphs(root *element) []string {
	var paras []string
	var cur strings.Builder

	flush := func() {
		if s := collapseSpace(cur.String()); s != "" {
			paras = append(paras, s)
		}
		cur.Reset()
	}

	var walk func(*element)
	walk = func(e *element) {
		for _, c := range e.children {
			if c.isText() {
				cur.WriteString(c.text)
				continue
			}
			name := strings.ToLower(c.name)
			if name == "br" {
				flush()
				continue
			}
			block := blockElements[name]
			if block {
				flush()
			}
			walk(c)
			if block {
				flush()
			}
		}
	}
	walk(root)
	flush()
	return paras
}

// textParagraphs splits plain text into non-empty trimmed lines.
func textParagraphs(s string) []string {
	var paras []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = collapseSpace(line); line != "" {
			paras = append(paras, line)
		}
	}
	return paras
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
