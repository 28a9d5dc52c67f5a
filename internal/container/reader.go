// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container opens MindManager mind-map files and maps their topic
// XML onto the neutral types.Document model.
//
// Two packagings are supported: the zip-based .mmap container holding a
// Document.xml entry plus auxiliary resources under bin/, and the legacy
// bare-XML .xmmap file. The packaging is chosen by signature bytes.
package container

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/pdiddy/mmap2md/pkg/types"
)

const (
	// topicDocument is the archive entry holding the topic tree.
	topicDocument = "Document.xml"

	// maxEntrySize caps how much of a single archive entry is read.
	maxEntrySize = 64 << 20
)

// resources resolves auxiliary entries (such as externally stored notes)
// by archive path.
type resources interface {
	read(name string) ([]byte, bool)
}

// noResources is used for bare-XML maps, which carry no archive entries.
type noResources struct{}

func (noResources) read(string) ([]byte, bool) { return nil, false }

// zipResources looks entries up case-insensitively.
type zipResources struct {
	files map[string]*zip.File
}

func newZipResources(zr *zip.Reader) *zipResources {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		key := strings.ToLower(path.Clean(strings.TrimPrefix(f.Name, "/")))
		if _, ok := files[key]; !ok {
			files[key] = f
		}
	}
	return &zipResources{files: files}
}

func (z *zipResources) lookup(name string) (*zip.File, bool) {
	f, ok := z.files[strings.ToLower(path.Clean(strings.TrimPrefix(name, "/")))]
	return f, ok
}

func (z *zipResources) read(name string) ([]byte, bool) {
	f, ok := z.lookup(name)
	if !ok {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
	if err != nil {
		return nil, false
	}
	return data, true
}

// ReadFile opens the mind map at path and returns its Document. Every
// failure is a *types.ConversionError; a partially built Document is never
// returned. The file handle is released on every exit path.
func ReadFile(path string) (*types.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, types.NewConversionError(types.KindInputNotFound, path, "cannot open file", err)
		}
		return nil, types.NewConversionError(types.KindInputNotFound, path, "", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, types.NewConversionError(types.KindInputNotFound, path, "cannot stat file", err)
	}
	if info.IsDir() {
		return nil, types.NewConversionError(types.KindInputNotFound, path, "is a directory", nil)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, types.NewConversionError(types.KindInputNotFound, path, "cannot read file", err)
	}
	head = head[:n]

	kind := Detect(head)
	switch kind {
	case KindZip:
		return readZip(path, f, info.Size())
	case KindXML:
		var start int64
		if bytes.HasPrefix(head, utf8BOM) {
			start = int64(len(utf8BOM))
		}
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			return nil, types.NewConversionError(types.KindInputNotFound, path, "cannot rewind file", err)
		}
		return readXML(path, f, noResources{}, true)
	default:
		detail := "signature matches neither a zip container nor an XML document"
		if want := expectedKind(path); want != KindUnknown {
			detail += fmt.Sprintf(" (extension suggests %s)", want)
		}
		return nil, types.NewConversionError(types.KindUnrecognizedContainer, path, detail, nil)
	}
}

func readZip(p string, r io.ReaderAt, size int64) (*types.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, types.NewConversionError(types.KindUnrecognizedContainer, p, "zip signature present but archive is unreadable", err)
	}

	res := newZipResources(zr)
	entry, ok := res.lookup(topicDocument)
	if !ok {
		return nil, types.NewConversionError(types.KindMissingTopicDocument, p,
			fmt.Sprintf("%s not found inside the archive", topicDocument), nil)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, types.NewConversionError(types.KindMalformedXML, p,
			fmt.Sprintf("cannot open %s", topicDocument), err)
	}
	defer rc.Close()

	return readXML(p, io.LimitReader(rc, maxEntrySize), res, false)
}

// readXML parses the topic XML and adapts it. bare reports whether the XML
// is the whole file (legacy variant), in which case the root element must
// belong to the MindManager schema.
func readXML(p string, r io.Reader, res resources, bare bool) (*types.Document, error) {
	tree, err := parseTree(r)
	if err != nil {
		ce := types.NewConversionError(types.KindMalformedXML, p, "", err)
		var se *xml.SyntaxError
		if errors.As(err, &se) {
			ce.Line = se.Line
		}
		return nil, ce
	}

	if bare && tree.name != "Map" {
		return nil, types.NewConversionError(types.KindUnrecognizedContainer, p,
			fmt.Sprintf("XML root element %q is not a mind map", tree.name), nil)
	}

	a := newAdapter(p, res)
	return a.document(tree)
}
