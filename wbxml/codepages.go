// SPDX-License-Identifier: GPL-3.0-or-later
package wbxml

import "strings"

const (
	PublicIDUnknown  = 0x01
	PublicIDSyncML10 = 0x0FD1
	PublicIDDevInf10 = 0x0FD2
	PublicIDSyncML11 = 0x0FD3
	PublicIDDevInf11 = 0x0FD4
	PublicIDSyncML12 = 0x1201
	PublicIDMetInf12 = 0x1202
	PublicIDDevInf12 = 0x1203
)

const (
	URIMetInf = "syncml:metinf"
	URIDevInf = "syncml:devinf"
)

type codePage struct {
	uri    string
	tags   map[byte]string
	tokens map[string]byte
}

func newCodePage(uri string, tags map[byte]string) *codePage {
	tokens := make(map[string]byte, len(tags))
	for tok, name := range tags {
		tokens[name] = tok
	}
	return &codePage{uri: uri, tags: tags, tokens: tokens}
}

// DTD describes one WBXML document type with its code pages.
type DTD struct {
	PublicID uint32
	DPI      string
	pages    map[byte]*codePage
}

// URI returns the namespace of a code page.
func (d *DTD) URI(page byte) string {
	if p, ok := d.pages[page]; ok {
		return p.uri
	}
	return ""
}

func (d *DTD) tag(page byte, tok byte) (string, bool) {
	p, ok := d.pages[page]
	if !ok {
		return "", false
	}
	name, ok := p.tags[tok]
	return name, ok
}

// token finds the code page and token of an element. Namespaces are matched
// case-insensitively and SyncML namespaces of any protocol version map to
// the SyncML page. Without namespace the current page wins.
func (d *DTD) token(uri, name string, current byte) (byte, byte, bool) {
	uri = strings.ToLower(uri)
	if uri != "" {
		for num, p := range d.pages {
			if sameNamespace(p.uri, uri) {
				tok, ok := p.tokens[name]
				return num, tok, ok
			}
		}
	}

	if p, ok := d.pages[current]; ok {
		if tok, ok := p.tokens[name]; ok {
			return current, tok, true
		}
	}
	for num, p := range d.pages {
		if tok, ok := p.tokens[name]; ok {
			return num, tok, true
		}
	}

	return 0, 0, false
}

func sameNamespace(a, b string) bool {
	if a == b {
		return true
	}
	const syncml = "syncml:syncml"
	return strings.HasPrefix(a, syncml) && strings.HasPrefix(b, syncml)
}

var syncMLTags = map[byte]string{
	0x05: "Add",
	0x06: "Alert",
	0x07: "Archive",
	0x08: "Atomic",
	0x09: "Chal",
	0x0A: "Cmd",
	0x0B: "CmdID",
	0x0C: "CmdRef",
	0x0D: "Copy",
	0x0E: "Cred",
	0x0F: "Data",
	0x10: "Delete",
	0x11: "Exec",
	0x12: "Final",
	0x13: "Get",
	0x14: "Item",
	0x15: "Lang",
	0x16: "LocName",
	0x17: "LocURI",
	0x18: "Map",
	0x19: "MapItem",
	0x1A: "Meta",
	0x1B: "MsgID",
	0x1C: "MsgRef",
	0x1D: "NoResp",
	0x1E: "NoResults",
	0x1F: "Put",
	0x20: "Replace",
	0x21: "RespURI",
	0x22: "Results",
	0x23: "Search",
	0x24: "Sequence",
	0x25: "SessionID",
	0x26: "SftDel",
	0x27: "Source",
	0x28: "SourceRef",
	0x29: "Status",
	0x2A: "Sync",
	0x2B: "SyncBody",
	0x2C: "SyncHdr",
	0x2D: "SyncML",
	0x2E: "Target",
	0x2F: "TargetRef",
	0x31: "VerDTD",
	0x32: "VerProto",
	0x33: "NumberOfChanges",
	0x34: "MoreData",
	0x35: "Field",
	0x36: "Filter",
	0x37: "Record",
	0x38: "FilterType",
	0x39: "SourceParent",
	0x3A: "TargetParent",
	0x3B: "Move",
	0x3C: "Correlator",
}

var metInfTags = map[byte]string{
	0x05: "Anchor",
	0x06: "EMI",
	0x07: "Format",
	0x08: "FreeID",
	0x09: "FreeMem",
	0x0A: "Last",
	0x0B: "Mark",
	0x0C: "MaxMsgSize",
	0x0D: "Mem",
	0x0E: "MetInf",
	0x0F: "Next",
	0x10: "NextNonce",
	0x11: "SharedMem",
	0x12: "Size",
	0x13: "Type",
	0x14: "Version",
	0x15: "MaxObjSize",
	0x16: "FieldLevel",
}

var devInfTags = map[byte]string{
	0x05: "CTCap",
	0x06: "CTType",
	0x07: "DataStore",
	0x08: "DataType",
	0x09: "DevID",
	0x0A: "DevInf",
	0x0B: "DevTyp",
	0x0C: "DisplayName",
	0x0D: "DSMem",
	0x0E: "Ext",
	0x0F: "FwV",
	0x10: "HwV",
	0x11: "Man",
	0x12: "MaxGUIDSize",
	0x13: "MaxID",
	0x14: "MaxMem",
	0x15: "Mod",
	0x16: "OEM",
	0x17: "ParamName",
	0x18: "PropName",
	0x19: "Rx",
	0x1A: "Rx-Pref",
	0x1B: "SharedMem",
	0x1C: "Size",
	0x1D: "SourceRef",
	0x1E: "SwV",
	0x1F: "SyncCap",
	0x20: "SyncType",
	0x21: "Tx",
	0x22: "Tx-Pref",
	0x23: "ValEnum",
	0x24: "VerCT",
	0x25: "VerDTD",
	0x26: "XNam",
	0x27: "XVal",
	0x28: "UTC",
	0x29: "SupportNumberOfChanges",
	0x2A: "SupportLargeObjs",
	0x2B: "Property",
	0x2C: "PropParam",
	0x2D: "MaxOccur",
	0x2E: "NoTruncate",
	0x30: "Filter-Rx",
	0x31: "FilterCap",
	0x32: "FilterKeyword",
	0x33: "FieldLevel",
	0x34: "SupportHierarchicalSync",
}

var (
	metInfPage = newCodePage(URIMetInf, metInfTags)
	devInfPage = newCodePage(URIDevInf, devInfTags)

	dtds = []*DTD{
		newSyncMLDTD(PublicIDSyncML10, "-//SYNCML//DTD SyncML 1.0//EN", "syncml:syncml1.0"),
		newSyncMLDTD(PublicIDSyncML11, "-//SYNCML//DTD SyncML 1.1//EN", "syncml:syncml1.1"),
		newSyncMLDTD(PublicIDSyncML12, "-//SYNCML//DTD SyncML 1.2//EN", "syncml:syncml1.2"),
		newDevInfDTD(PublicIDDevInf10, "-//SYNCML//DTD DevInf 1.0//EN"),
		newDevInfDTD(PublicIDDevInf11, "-//SYNCML//DTD DevInf 1.1//EN"),
		newDevInfDTD(PublicIDDevInf12, "-//SYNCML//DTD DevInf 1.2//EN"),
		{
			PublicID: PublicIDMetInf12,
			DPI:      "-//SYNCML//DTD MetInf 1.2//EN",
			pages:    map[byte]*codePage{0: metInfPage},
		},
	}
)

func newSyncMLDTD(publicID uint32, dpi, uri string) *DTD {
	return &DTD{
		PublicID: publicID,
		DPI:      dpi,
		pages: map[byte]*codePage{
			0: newCodePage(uri, syncMLTags),
			1: metInfPage,
		},
	}
}

func newDevInfDTD(publicID uint32, dpi string) *DTD {
	return &DTD{
		PublicID: publicID,
		DPI:      dpi,
		pages:    map[byte]*codePage{0: devInfPage},
	}
}

func dtdByPublicID(id uint32) *DTD {
	for _, d := range dtds {
		if d.PublicID == id {
			return d
		}
	}
	return nil
}

func dtdByDPI(dpi string) *DTD {
	dpi = strings.ToLower(strings.TrimSpace(dpi))
	for _, d := range dtds {
		if strings.ToLower(d.DPI) == dpi {
			return d
		}
	}
	return nil
}

// SyncMLDTD returns the SyncML document type of a protocol version index
// (0 = 1.0, 1 = 1.1, 2 = 1.2).
func SyncMLDTD(version int) *DTD {
	switch version {
	case 0:
		return dtdByPublicID(PublicIDSyncML10)
	case 1:
		return dtdByPublicID(PublicIDSyncML11)
	}
	return dtdByPublicID(PublicIDSyncML12)
}

func DevInfDTD(version int) *DTD {
	switch version {
	case 0:
		return dtdByPublicID(PublicIDDevInf10)
	case 1:
		return dtdByPublicID(PublicIDDevInf11)
	}
	return dtdByPublicID(PublicIDDevInf12)
}
