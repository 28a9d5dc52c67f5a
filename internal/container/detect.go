// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Kind identifies the on-disk packaging of a mind map.
type Kind int

const (
	KindUnknown Kind = iota
	// KindZip is the zip-packaged .mmap container.
	KindZip
	// KindXML is the legacy bare-XML variant.
	KindXML
)

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindXML:
		return "xml"
	default:
		return "unknown"
	}
}

// sniffLen is how many leading bytes Detect needs to see.
const sniffLen = 512

var (
	zipLocalHeader = []byte("PK\x03\x04")
	zipEmptyEOCD   = []byte("PK\x05\x06")
	utf8BOM        = []byte("\xEF\xBB\xBF")
)

// Detect classifies a file from its leading bytes. The file extension plays
// no part in the decision.
func Detect(head []byte) Kind {
	if bytes.HasPrefix(head, zipLocalHeader) || bytes.HasPrefix(head, zipEmptyEOCD) {
		return KindZip
	}
	rest := bytes.TrimPrefix(head, utf8BOM)
	rest = bytes.TrimLeft(rest, " \t\r\n")
	if len(rest) > 0 && rest[0] == '<' {
		return KindXML
	}
	return KindUnknown
}

// expectedKind maps a file extension to the kind it usually carries. It is
// advisory and only used to enrich error details.
func expectedKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mmap", ".mmat", ".mmpt":
		return KindZip
	case ".xmmap", ".xml":
		return KindXML
	default:
		return KindUnknown
	}
}

// IsMapFile reports whether path has a mind-map extension. Used by directory
// discovery and the watcher to pick candidate files.
func IsMapFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mmap", ".xmmap":
		return true
	}
	return false
}
