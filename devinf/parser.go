// SPDX-License-Identifier: GPL-3.0-or-later
package devinf

import (
	"strconv"
	"strings"
)

// Parser builds a DeviceInfo from the element events of a DevInf document.
// Both the flat CTCap layout of DevInf 1.0/1.1 and the nested Property
// layout of 1.2 are understood.
type Parser struct {
	info  *DeviceInfo
	stack []string
	chars strings.Builder

	ds        *DataStore
	ct        *ContentType
	capParent string
	cap       *CTCap
	prop      *Property
	param     *PropParam
	xnam      string
}

func NewParser() *Parser {
	return &Parser{info: &DeviceInfo{}}
}

func (p *Parser) DeviceInfo() *DeviceInfo {
	return p.info
}

func (p *Parser) parent() string {
	if len(p.stack) < 2 {
		return ""
	}
	return p.stack[len(p.stack)-2]
}

func (p *Parser) StartElement(uri, element string) {
	p.stack = append(p.stack, element)
	p.chars.Reset()

	switch element {
	case "DataStore":
		p.ds = &DataStore{}
	case "Rx-Pref", "Rx", "Tx-Pref", "Tx":
		p.ct = &ContentType{}
	case "CTCap":
		p.capParent = p.parent()
		p.cap = nil
	case "Property":
		p.flushProperty()
		p.prop = &Property{}
	case "PropParam":
		p.flushParam()
		p.param = &PropParam{}
	}
}

func (p *Parser) Characters(chars string) {
	p.chars.WriteString(chars)
}

func (p *Parser) EndElement(uri, element string) {
	text := strings.TrimSpace(p.chars.String())
	parent := p.parent()

	switch parent {
	case "DevInf":
		p.devInfField(element, text)
	case "DataStore":
		p.dataStoreField(element, text)
	case "Rx-Pref", "Rx", "Tx-Pref", "Tx":
		switch element {
		case "CTType":
			p.ct.CTType = text
		case "VerCT":
			p.ct.VerCT = text
		}
	case "SyncCap":
		if element == "SyncType" && p.ds != nil {
			if st, err := strconv.Atoi(text); err == nil {
				p.ds.SyncCap = append(p.ds.SyncCap, st)
			}
		}
	case "CTCap", "Property", "PropParam":
		p.capField(parent, element, text)
	case "Ext":
		switch element {
		case "XNam":
			p.xnam = text
		case "XVal":
			if p.info.Ext == nil {
				p.info.Ext = map[string][]string{}
			}
			p.info.Ext[p.xnam] = append(p.info.Ext[p.xnam], text)
		}
	}

	switch element {
	case "DataStore":
		if p.ds != nil {
			p.info.DataStores = append(p.info.DataStores, *p.ds)
			p.ds = nil
		}
	case "CTCap":
		p.flushCap()
	case "Property":
		p.flushProperty()
	case "PropParam":
		p.flushParam()
	}

	p.chars.Reset()
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *Parser) devInfField(element, text string) {
	switch element {
	case "VerDTD":
		p.info.VerDTD = text
	case "Man":
		p.info.Man = text
	case "Mod":
		p.info.Mod = text
	case "OEM":
		p.info.OEM = text
	case "FwV":
		p.info.FwV = text
	case "SwV":
		p.info.SwV = text
	case "HwV":
		p.info.HwV = text
	case "DevID":
		p.info.DevID = text
	case "DevTyp":
		p.info.DevTyp = text
	case "UTC":
		p.info.UTC = true
	case "SupportLargeObjs":
		p.info.SupportLargeObjs = true
	case "SupportNumberOfChanges":
		p.info.SupportNumberOfChanges = true
	}
}

func (p *Parser) dataStoreField(element, text string) {
	if p.ds == nil {
		return
	}

	switch element {
	case "SourceRef":
		p.ds.SourceRef = text
	case "DisplayName":
		p.ds.DisplayName = text
	case "MaxGUIDSize":
		p.ds.MaxGUIDSize, _ = strconv.Atoi(text)
	case "Rx-Pref":
		p.ds.RxPref = *p.ct
	case "Rx":
		p.ds.Rx = append(p.ds.Rx, *p.ct)
	case "Tx-Pref":
		p.ds.TxPref = *p.ct
	case "Tx":
		p.ds.Tx = append(p.ds.Tx, *p.ct)
	}
}

func (p *Parser) capField(parent, element, text string) {
	switch element {
	case "CTType":
		p.flushCap()
		p.cap = &CTCap{CTType: text}
	case "VerCT":
		if p.cap != nil {
			p.cap.VerCT = text
		}
	case "PropName":
		if parent == "Property" && p.prop != nil {
			p.prop.Name = text
			return
		}
		// flat layout: every PropName opens a new property
		p.flushProperty()
		p.prop = &Property{Name: text}
	case "ParamName":
		if parent == "PropParam" && p.param != nil {
			p.param.Name = text
			return
		}
		p.flushParam()
		if p.prop != nil {
			p.param = &PropParam{Name: text}
		}
	case "ValEnum":
		if p.param != nil {
			p.param.ValEnum = append(p.param.ValEnum, text)
		} else if p.prop != nil {
			p.prop.ValEnum = append(p.prop.ValEnum, text)
		}
	case "DataType":
		if p.param != nil {
			p.param.DataType = text
		} else if p.prop != nil {
			p.prop.DataType = text
		}
	case "DisplayName":
		if p.param != nil {
			p.param.DisplayName = text
		} else if p.prop != nil {
			p.prop.DisplayName = text
		}
	case "Size", "MaxSize":
		if p.prop != nil && p.param == nil {
			p.prop.MaxSize, _ = strconv.Atoi(text)
		}
	case "MaxOccur":
		if p.prop != nil {
			p.prop.MaxOccur, _ = strconv.Atoi(text)
		}
	case "NoTruncate":
		if p.prop != nil {
			p.prop.NoTruncate = true
		}
	}
}

func (p *Parser) flushParam() {
	if p.param != nil && p.prop != nil {
		p.prop.Params = append(p.prop.Params, *p.param)
	}
	p.param = nil
}

func (p *Parser) flushProperty() {
	p.flushParam()
	if p.prop != nil && p.cap != nil {
		p.cap.Properties = append(p.cap.Properties, *p.prop)
	}
	p.prop = nil
}

func (p *Parser) flushCap() {
	p.flushProperty()
	if p.cap == nil {
		return
	}
	if p.capParent == "DataStore" && p.ds != nil {
		p.ds.CTCaps = append(p.ds.CTCaps, *p.cap)
	} else {
		p.info.CTCaps = append(p.info.CTCaps, *p.cap)
	}
	p.cap = nil
}
