// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/CrawX/go-syncml/wbxml"
)

// ContentWriter receives the elements of an outgoing document.
type ContentWriter interface {
	StartElement(uri, element string)
	EndElement(uri, element string)
	Characters(chars string)
	// CData writes chars without escaping where the format allows it.
	CData(chars string)
	// Opaque embeds a complete document created by a SubWriter.
	Opaque(data []byte)
	Size() int
	Output() ([]byte, error)
	// SubWriter creates a writer for a document embedded into this one.
	SubWriter() ContentWriter
}

// xmlWriter produces plain XML. A namespace is declared on every element
// whose namespace differs from its parent's.
type xmlWriter struct {
	buf        bytes.Buffer
	namespaces []string
	err        error
}

func newXMLWriter() *xmlWriter {
	return &xmlWriter{}
}

func (w *xmlWriter) current() string {
	if len(w.namespaces) == 0 {
		return ""
	}
	return w.namespaces[len(w.namespaces)-1]
}

func (w *xmlWriter) StartElement(uri, element string) {
	if uri != "" && uri != w.current() {
		fmt.Fprintf(&w.buf, `<%s xmlns="%s">`, element, uri)
	} else {
		uri = w.current()
		fmt.Fprintf(&w.buf, "<%s>", element)
	}
	w.namespaces = append(w.namespaces, uri)
}

func (w *xmlWriter) EndElement(uri, element string) {
	if len(w.namespaces) == 0 {
		w.err = fmt.Errorf("unbalanced end of %s", element)
		return
	}
	w.namespaces = w.namespaces[:len(w.namespaces)-1]
	fmt.Fprintf(&w.buf, "</%s>", element)
}

func (w *xmlWriter) Characters(chars string) {
	err := xml.EscapeText(&w.buf, []byte(chars))
	if err != nil && w.err == nil {
		w.err = err
	}
}

func (w *xmlWriter) CData(chars string) {
	w.buf.WriteString("<![CDATA[")
	w.buf.WriteString(strings.ReplaceAll(chars, "]]>", "]]]]><![CDATA[>"))
	w.buf.WriteString("]]>")
}

func (w *xmlWriter) Opaque(data []byte) {
	w.buf.Write(data)
}

func (w *xmlWriter) Size() int {
	return w.buf.Len()
}

func (w *xmlWriter) Output() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.namespaces) != 0 {
		return nil, fmt.Errorf("%d elements left open", len(w.namespaces))
	}
	return w.buf.Bytes(), nil
}

func (w *xmlWriter) SubWriter() ContentWriter {
	return newXMLWriter()
}

// wbxmlWriter produces WBXML. Embedded documents use the DevInf code page
// matching the protocol version.
type wbxmlWriter struct {
	*wbxml.Encoder
	version int
}

func newWBXMLWriter(version int) *wbxmlWriter {
	return &wbxmlWriter{Encoder: wbxml.NewEncoder(wbxml.SyncMLDTD(version)), version: version}
}

func (w *wbxmlWriter) CData(chars string) {
	w.Characters(chars)
}

func (w *wbxmlWriter) SubWriter() ContentWriter {
	return &wbxmlWriter{Encoder: wbxml.NewEncoder(wbxml.DevInfDTD(w.version)), version: w.version}
}
