// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// newGoldmark builds the engine used for previews. Raw HTML in topic text
// is escaped by Escape before it gets here, so the default safe renderer is
// kept.
func newGoldmark() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// RenderHTML converts emitted Markdown into a standalone HTML preview page
// titled with title.
func RenderHTML(md []byte, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := newGoldmark().Convert(md, &body); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
