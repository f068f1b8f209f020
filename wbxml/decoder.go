// SPDX-License-Identifier: GPL-3.0-or-later
package wbxml

import (
	"bytes"
	"fmt"
)

// Handler receives the element events of a decoded document.
type Handler interface {
	StartElement(uri, element string)
	EndElement(uri, element string)
	Characters(chars string)
}

type element struct {
	uri, name string
}

// Decoder turns a WBXML document into Handler events.
type Decoder struct {
	Version  byte
	PublicID uint32
	Charset  uint32
	DTD      *DTD

	r       *bytes.Reader
	strtbl  []byte
	page    byte
	stack   []element
	handler Handler
	nesting int
}

// Decode parses data and feeds handler. Opaque data inside a Data element
// that starts with a WBXML version byte is decoded as embedded document
// (device information) into the same handler.
func Decode(data []byte, handler Handler) (*Decoder, error) {
	d := &Decoder{handler: handler}
	err := d.decode(data)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decoder) decode(data []byte) error {
	d.r = bytes.NewReader(data)

	var err error
	d.Version, err = d.r.ReadByte()
	if err != nil {
		return ErrTruncated
	}

	d.PublicID, err = readMbUint32(d.r)
	if err != nil {
		return err
	}
	var dpiIndex uint32
	if d.PublicID == 0 {
		dpiIndex, err = readMbUint32(d.r)
		if err != nil {
			return err
		}
	}

	d.Charset, err = readMbUint32(d.r)
	if err != nil {
		return err
	}
	if d.Charset != CharsetUTF8 && d.Charset != 0 {
		return fmt.Errorf("wbxml: unsupported charset %d", d.Charset)
	}

	tblLen, err := readMbUint32(d.r)
	if err != nil {
		return err
	}
	if int(tblLen) > d.r.Len() {
		return ErrTruncated
	}
	d.strtbl = make([]byte, tblLen)
	_, err = d.r.Read(d.strtbl)
	if err != nil && tblLen > 0 {
		return ErrTruncated
	}

	if d.PublicID == 0 {
		dpi, err := d.tableString(dpiIndex)
		if err != nil {
			return err
		}
		d.DTD = dtdByDPI(dpi)
		if d.DTD == nil {
			return fmt.Errorf("wbxml: unknown document type %q", dpi)
		}
	} else {
		d.DTD = dtdByPublicID(d.PublicID)
		if d.DTD == nil {
			return fmt.Errorf("wbxml: unknown public id 0x%X", d.PublicID)
		}
	}

	return d.body()
}

func (d *Decoder) body() error {
	for {
		tok, err := d.r.ReadByte()
		if err != nil {
			if len(d.stack) > 0 {
				return ErrTruncated
			}
			return nil
		}

		switch tok {
		case SWITCH_PAGE:
			d.page, err = d.r.ReadByte()
			if err != nil {
				return ErrTruncated
			}
		case END:
			if len(d.stack) == 0 {
				return fmt.Errorf("wbxml: END without open element")
			}
			top := d.stack[len(d.stack)-1]
			d.stack = d.stack[:len(d.stack)-1]
			d.handler.EndElement(top.uri, top.name)
		case ENTITY:
			entity, err := readMbUint32(d.r)
			if err != nil {
				return err
			}
			d.handler.Characters(string(rune(entity)))
		case STR_I:
			s, err := d.inlineString()
			if err != nil {
				return err
			}
			d.handler.Characters(s)
		case STR_T:
			idx, err := readMbUint32(d.r)
			if err != nil {
				return err
			}
			s, err := d.tableString(idx)
			if err != nil {
				return err
			}
			d.handler.Characters(s)
		case OPAQUE:
			err = d.opaque()
			if err != nil {
				return err
			}
		case EXT_I_0, EXT_I_1, EXT_I_2:
			_, err = d.inlineString()
			if err != nil {
				return err
			}
		case EXT_T_0, EXT_T_1, EXT_T_2:
			_, err = readMbUint32(d.r)
			if err != nil {
				return err
			}
		case EXT_0, EXT_1, EXT_2:
		case PI:
			return fmt.Errorf("wbxml: processing instructions are not supported")
		case LITERAL, LITERAL_A, LITERAL_C, LITERAL_AC:
			idx, err := readMbUint32(d.r)
			if err != nil {
				return err
			}
			name, err := d.tableString(idx)
			if err != nil {
				return err
			}
			err = d.startElement(name, tok)
			if err != nil {
				return err
			}
		default:
			name, ok := d.DTD.tag(d.page, tok&tagMask)
			if !ok {
				return fmt.Errorf("wbxml: unknown tag 0x%02X on code page %d", tok&tagMask, d.page)
			}
			err = d.startElement(name, tok)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Decoder) startElement(name string, tok byte) error {
	if tok&tagHasAttributes != 0 {
		return fmt.Errorf("wbxml: attributes on %s are not supported", name)
	}

	uri := d.DTD.URI(d.page)
	d.handler.StartElement(uri, name)
	if tok&tagHasContent != 0 {
		d.stack = append(d.stack, element{uri: uri, name: name})
	} else {
		d.handler.EndElement(uri, name)
	}

	return nil
}

func (d *Decoder) opaque() error {
	length, err := readMbUint32(d.r)
	if err != nil {
		return err
	}
	if int(length) > d.r.Len() {
		return ErrTruncated
	}
	data := make([]byte, length)
	if length > 0 {
		_, err = d.r.Read(data)
		if err != nil {
			return ErrTruncated
		}
	}

	inData := len(d.stack) > 0 && d.stack[len(d.stack)-1].name == "Data"
	if inData && length > 0 && data[0] <= 10 && d.nesting == 0 {
		sub := &Decoder{handler: d.handler, nesting: d.nesting + 1}
		err = sub.decode(data)
		if err != nil {
			return fmt.Errorf("could not decode embedded document: %w", err)
		}
		return nil
	}

	d.handler.Characters(string(data))
	return nil
}

func (d *Decoder) inlineString() (string, error) {
	var b []byte
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return "", ErrTruncated
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
	}
}

func (d *Decoder) tableString(idx uint32) (string, error) {
	if int(idx) >= len(d.strtbl) {
		return "", fmt.Errorf("wbxml: string table index %d out of range", idx)
	}
	end := bytes.IndexByte(d.strtbl[idx:], 0)
	if end < 0 {
		return string(d.strtbl[idx:]), nil
	}
	return string(d.strtbl[idx : int(idx)+end]), nil
}
