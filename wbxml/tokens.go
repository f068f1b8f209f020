// SPDX-License-Identifier: GPL-3.0-or-later
package wbxml

import (
	"errors"
	"fmt"
	"io"
)

// Global tokens, WAP-192-WBXML section 7.1.
const (
	SWITCH_PAGE = 0x00
	END         = 0x01
	ENTITY      = 0x02
	STR_I       = 0x03
	LITERAL     = 0x04
	EXT_I_0     = 0x40
	EXT_I_1     = 0x41
	EXT_I_2     = 0x42
	PI          = 0x43
	LITERAL_C   = 0x44
	EXT_T_0     = 0x80
	EXT_T_1     = 0x81
	EXT_T_2     = 0x82
	STR_T       = 0x83
	LITERAL_A   = 0x84
	EXT_0       = 0xC0
	EXT_1       = 0xC1
	EXT_2       = 0xC2
	OPAQUE      = 0xC3
	LITERAL_AC  = 0xC4
)

const (
	tagHasContent    = 0x40
	tagHasAttributes = 0x80
	tagMask          = 0x3F
)

const (
	Version12   = 0x02
	CharsetUTF8 = 106
)

var ErrTruncated = errors.New("wbxml: unexpected end of data")

// appendMbUint32 encodes v as multi-byte unsigned integer: big endian groups
// of seven bits, every byte but the last has the continuation bit set.
func appendMbUint32(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	v >>= 7
	for v > 0 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
		v >>= 7
	}
	return append(b, tmp[i:]...)
}

func readMbUint32(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, ErrTruncated
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}

	return 0, fmt.Errorf("wbxml: mb_u_int32 longer than 5 bytes")
}
