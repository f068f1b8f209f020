// SPDX-License-Identifier: GPL-3.0-or-later
package wbxml

import (
	"bytes"
	"fmt"
)

// Encoder writes a WBXML document element by element. The document type is
// announced through the string table like most SyncML servers do. Every
// element is written with content and closed by END.
type Encoder struct {
	dtd   *DTD
	page  byte
	body  bytes.Buffer
	depth int
	err   error
}

func NewEncoder(dtd *DTD) *Encoder {
	return &Encoder{dtd: dtd}
}

func (e *Encoder) DTD() *DTD {
	return e.dtd
}

func (e *Encoder) header() []byte {
	h := []byte{Version12, 0x00}
	h = appendMbUint32(h, 0)
	h = appendMbUint32(h, CharsetUTF8)
	h = appendMbUint32(h, uint32(len(e.dtd.DPI)+1))
	h = append(h, e.dtd.DPI...)
	return append(h, 0x00)
}

func (e *Encoder) StartElement(uri, element string) {
	if e.err != nil {
		return
	}

	page, tok, ok := e.dtd.token(uri, element, e.page)
	if !ok {
		e.err = fmt.Errorf("wbxml: no token for element %s (%s)", element, uri)
		return
	}

	if page != e.page {
		e.body.WriteByte(SWITCH_PAGE)
		e.body.WriteByte(page)
		e.page = page
	}
	e.body.WriteByte(tok | tagHasContent)
	e.depth++
}

func (e *Encoder) EndElement(uri, element string) {
	if e.err != nil {
		return
	}
	if e.depth == 0 {
		e.err = fmt.Errorf("wbxml: unbalanced end of %s", element)
		return
	}

	e.body.WriteByte(END)
	e.depth--
}

func (e *Encoder) Characters(chars string) {
	if e.err != nil || len(chars) == 0 {
		return
	}

	if bytes.IndexByte([]byte(chars), 0) >= 0 {
		e.Opaque([]byte(chars))
		return
	}
	e.body.WriteByte(STR_I)
	e.body.WriteString(chars)
	e.body.WriteByte(0x00)
}

func (e *Encoder) Opaque(data []byte) {
	if e.err != nil {
		return
	}

	e.body.WriteByte(OPAQUE)
	e.body.Write(appendMbUint32(nil, uint32(len(data))))
	e.body.Write(data)
}

// Size is the number of bytes the document has so far.
func (e *Encoder) Size() int {
	return len(e.header()) + e.body.Len()
}

func (e *Encoder) Output() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.depth != 0 {
		return nil, fmt.Errorf("wbxml: %d elements left open", e.depth)
	}

	return append(e.header(), e.body.Bytes()...), nil
}
