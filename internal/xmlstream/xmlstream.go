// Package xmlstream is a start-tag/attribute/text/end-tag XML writer on top of
// encoding/xml. Attributes may follow StartTag until the next content call.
package xmlstream

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

var errNoOpenTag = errors.New("xmlstream: attribute outside of start tag")

// Serializer streams an XML document to an io.Writer. Escaping is done by encoding/xml.
type Serializer struct {
	w       io.Writer
	enc     *xml.Encoder
	pending *xml.StartElement
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithIndent pretty-prints the document with two-space indentation.
func WithIndent() Option {
	return func(s *Serializer) {
		s.enc.Indent("", "  ")
	}
}

func New(w io.Writer, opts ...Option) *Serializer {
	s := &Serializer{w: w, enc: xml.NewEncoder(w)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartDocument writes the XML declaration. It must be the first call.
func (s *Serializer) StartDocument(encoding string, standalone bool) error {
	decl := `<?xml version="1.0" encoding="` + encoding + `"`
	if standalone {
		decl += ` standalone="yes"`
	}
	decl += "?>\n"
	if _, err := io.WriteString(s.w, decl); err != nil {
		return fmt.Errorf("write xml declaration: %w", err)
	}
	return nil
}

func (s *Serializer) StartTag(namespace, name string) error {
	if err := s.flushPending(); err != nil {
		return err
	}
	s.pending = &xml.StartElement{Name: xml.Name{Space: namespace, Local: name}}
	return nil
}

func (s *Serializer) Attribute(namespace, name, value string) error {
	if s.pending == nil {
		return errNoOpenTag
	}
	s.pending.Attr = append(s.pending.Attr, xml.Attr{
		Name:  xml.Name{Space: namespace, Local: name},
		Value: value,
	})
	return nil
}

func (s *Serializer) Text(value string) error {
	if err := s.flushPending(); err != nil {
		return err
	}
	return s.encode(xml.CharData(value))
}

func (s *Serializer) EndTag(namespace, name string) error {
	if err := s.flushPending(); err != nil {
		return err
	}
	return s.encode(xml.EndElement{Name: xml.Name{Space: namespace, Local: name}})
}

func (s *Serializer) Flush() error {
	if err := s.flushPending(); err != nil {
		return err
	}
	if err := s.enc.Flush(); err != nil {
		return fmt.Errorf("flush xml: %w", err)
	}
	return nil
}

// EndDocument verifies every element was closed and flushes remaining output.
func (s *Serializer) EndDocument() error {
	if err := s.flushPending(); err != nil {
		return err
	}
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("end xml document: %w", err)
	}
	return nil
}

func (s *Serializer) flushPending() error {
	if s.pending == nil {
		return nil
	}
	start := *s.pending
	s.pending = nil
	return s.encode(start)
}

func (s *Serializer) encode(tok xml.Token) error {
	if err := s.enc.EncodeToken(tok); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	return nil
}
