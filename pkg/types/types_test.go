// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &ConversionError{Kind: KindMalformedXML, Path: "plan.mmap", Detail: "Document.xml", Line: 12, Err: cause}

	assert.Equal(t, "MalformedXML: plan.mmap:12: Document.xml: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, ErrMalformedXML)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMissingTopicDocument)

	wrapped := fmt.Errorf("converting: %w", err)
	assert.ErrorIs(t, wrapped, ErrMalformedXML)
	assert.Equal(t, KindMalformedXML, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(cause))
}

func TestConversionError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *ConversionError
		want string
	}{
		{
			name: "path only",
			err:  NewConversionError(KindInputNotFound, "x.mmap", "", nil),
			want: "InputNotFound: x.mmap",
		},
		{
			name: "detail without cause",
			err:  NewConversionError(KindMissingMandatoryField, "x.mmap", `topic "t1" has no text`, nil),
			want: `MissingMandatoryField: x.mmap: topic "t1" has no text`,
		},
		{
			name: "cause without detail",
			err:  NewConversionError(KindUnrecognizedContainer, "x.mmap", "", errors.New("zip: not a valid zip file")),
			want: "UnrecognizedContainer: x.mmap: zip: not a valid zip file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: KindUnresolvedRelationshipTarget, Detail: "relationship r1: target topic \"x\" not found"}
	assert.Equal(t, `UnresolvedRelationshipTarget: relationship r1: target topic "x" not found`, w.String())
}

func TestNewDocument_Index(t *testing.T) {
	dup := &Topic{ID: "a", Text: []Run{Plain("second a")}}
	first := &Topic{ID: "a", Text: []Run{Plain("first a")}, Children: []*Topic{dup}}
	anon := &Topic{Text: []Run{Plain("no id")}}
	root := &Topic{ID: "root", Text: []Run{Plain("Root")}, Children: []*Topic{first, anon, {ID: "b", Text: []Run{Plain("B")}}}}

	doc := NewDocument("m.mmap", root, nil)

	got, ok := doc.Topic("a")
	require.True(t, ok)
	assert.Same(t, first, got, "first occurrence in pre-order wins")
	_, ok = doc.Topic("")
	assert.False(t, ok, "empty IDs are not indexed")
	_, ok = doc.Topic("missing")
	assert.False(t, ok)
	assert.Equal(t, 3, doc.TopicCount())
}

func TestNewDocument_NilRoot(t *testing.T) {
	doc := NewDocument("m.mmap", nil, nil)
	assert.Zero(t, doc.TopicCount())
}

func TestTopicText(t *testing.T) {
	topic := &Topic{Text: []Run{Bold("Due"), Plain(" soon "), Link("docs", "https://example.com")}}
	assert.Equal(t, "Due soon docs", topic.PlainText())

	assert.False(t, (&Topic{}).HasNotes())
	assert.False(t, (&Topic{Notes: []string{"  ", ""}}).HasNotes())
	assert.True(t, (&Topic{Notes: []string{"", "remember"}}).HasNotes())
}

func TestConversionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConversionConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*ConversionConfig) {}},
		{name: "widest indent", mutate: func(c *ConversionConfig) { c.IndentWidth = MaxIndentWidth }},
		{name: "fenced notes", mutate: func(c *ConversionConfig) { c.NoteStyle = NoteFenced }},
		{name: "indent too small", mutate: func(c *ConversionConfig) { c.IndentWidth = 1 }, wantErr: "indent"},
		{name: "indent too large", mutate: func(c *ConversionConfig) { c.IndentWidth = 8 }, wantErr: "indent"},
		{name: "unknown note style", mutate: func(c *ConversionConfig) { c.NoteStyle = "table" }, wantErr: "note_style"},
		{name: "negative jobs", mutate: func(c *ConversionConfig) { c.Jobs = -1 }, wantErr: "jobs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConversionConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
