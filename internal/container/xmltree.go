// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// element is a namespace-agnostic XML node. Text nodes have an empty name
// and carry their character data in text; element nodes keep mixed content
// in document order so XHTML notes can be flattened faithfully.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
	text     string
	line     int
}

func (e *element) isText() bool { return e.name == "" }

// attr returns the value of the attribute with the given local name.
func (e *element) attr(name string) string {
	if e == nil {
		return ""
	}
	return e.attrs[name]
}

// child returns the first direct child element with the given local name.
func (e *element) child(name string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childrenNamed returns every direct child element with the given local name.
func (e *element) childrenNamed(name string) []*element {
	if e == nil {
		return nil
	}
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// path follows a chain of direct children.
func (e *element) path(names ...string) *element {
	cur := e
	for _, n := range names {
		cur = cur.child(n)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// find returns the first descendant (pre-order, excluding e) with the given
// local name.
func (e *element) find(name string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if c.name == name {
			return c
		}
		if f := c.find(name); f != nil {
			return f
		}
	}
	return nil
}

// findAll returns every descendant with the given local name, in pre-order.
func (e *element) findAll(name string) []*element {
	if e == nil {
		return nil
	}
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
		out = append(out, c.findAll(name)...)
	}
	return out
}

// charData returns the concatenated direct text content.
func (e *element) charData() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range e.children {
		if c.isText() {
			b.WriteString(c.text)
		}
	}
	return b.String()
}

// innerText returns all descendant text content in document order.
func (e *element) innerText() string {
	var b strings.Builder
	var walk func(*element)
	walk = func(n *element) {
		for _, c := range n.children {
			if c.isText() {
				b.WriteString(c.text)
				continue
			}
			walk(c)
		}
	}
	if e != nil {
		walk(e)
	}
	return b.String()
}

// maxDepth bounds element nesting. The tree is walked recursively, so an
// unbounded depth could exhaust the stack.
const maxDepth = 1000

// parseTree decodes a whole XML document into an element tree. Declared
// non-UTF-8 encodings are transcoded through x/net's charset tables. The
// returned error is the decoder's own, so *xml.SyntaxError survives for
// position reporting.
func parseTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root *element
	var stack []*element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, _ := dec.InputPos()
			if len(stack) >= maxDepth {
				return nil, &xml.SyntaxError{Msg: fmt.Sprintf("elements nested deeper than %d levels", maxDepth), Line: line}
			}
			el := &element{name: t.Name.Local, line: line}
			if len(t.Attr) > 0 {
				el.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					if _, dup := el.attrs[a.Name.Local]; !dup {
						el.attrs[a.Name.Local] = a.Value
					}
				}
			}
			if len(stack) == 0 {
				if root != nil {
					line, _ := dec.InputPos()
					return nil, &xml.SyntaxError{Msg: "multiple root elements", Line: line}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, &element{text: string(t)})
			}
		}
	}

	if root == nil {
		return nil, &xml.SyntaxError{Msg: "document has no root element", Line: 1}
	}
	return root, nil
}
