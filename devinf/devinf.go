// SPDX-License-Identifier: GPL-3.0-or-later
package devinf

import "strings"

type ContentType struct {
	CTType string
	VerCT  string
}

type PropParam struct {
	Name        string
	DataType    string
	DisplayName string
	ValEnum     []string
}

type Property struct {
	Name        string
	DataType    string
	DisplayName string
	MaxOccur    int
	MaxSize     int
	NoTruncate  bool
	ValEnum     []string
	Params      []PropParam
}

// CTCap lists the properties a device supports for one content type.
type CTCap struct {
	CTType     string
	VerCT      string
	Properties []Property
}

func (c *CTCap) Property(name string) *Property {
	for i := range c.Properties {
		if strings.EqualFold(c.Properties[i].Name, name) {
			return &c.Properties[i]
		}
	}
	return nil
}

type DataStore struct {
	SourceRef   string
	DisplayName string
	MaxGUIDSize int
	RxPref      ContentType
	Rx          []ContentType
	TxPref      ContentType
	Tx          []ContentType
	SyncCap     []int
	CTCaps      []CTCap
}

// SupportsRx reports whether the datastore accepts the content type.
func (d *DataStore) SupportsRx(ctType string) bool {
	if strings.EqualFold(d.RxPref.CTType, ctType) {
		return true
	}
	for _, ct := range d.Rx {
		if strings.EqualFold(ct.CTType, ctType) {
			return true
		}
	}
	return false
}

func (d *DataStore) SupportsSyncType(syncType int) bool {
	for _, st := range d.SyncCap {
		if st == syncType {
			return true
		}
	}
	return false
}

type DeviceInfo struct {
	VerDTD string
	Man    string
	Mod    string
	OEM    string
	FwV    string
	SwV    string
	HwV    string
	DevID  string
	DevTyp string

	UTC                    bool
	SupportLargeObjs       bool
	SupportNumberOfChanges bool

	DataStores []DataStore
	// CTCaps holds the device wide capabilities of DevInf 1.0 and 1.1.
	CTCaps []CTCap
	Ext    map[string][]string
}

// Empty is true until device information has been received.
func (d *DeviceInfo) Empty() bool {
	return d == nil || (d.Man == "" && d.Mod == "" && d.DevID == "" && len(d.DataStores) == 0)
}

// DataStore finds the datastore with the source reference, ignoring a
// leading "./".
func (d *DeviceInfo) DataStore(sourceRef string) *DataStore {
	if d == nil {
		return nil
	}
	sourceRef = strings.TrimPrefix(sourceRef, "./")
	for i := range d.DataStores {
		if strings.EqualFold(strings.TrimPrefix(d.DataStores[i].SourceRef, "./"), sourceRef) {
			return &d.DataStores[i]
		}
	}
	return nil
}

// CTCap looks up a content type's capabilities in the device wide list and
// in all datastores.
func (d *DeviceInfo) CTCap(ctType string) *CTCap {
	if d == nil {
		return nil
	}
	for i := range d.CTCaps {
		if strings.EqualFold(d.CTCaps[i].CTType, ctType) {
			return &d.CTCaps[i]
		}
	}
	for i := range d.DataStores {
		for j := range d.DataStores[i].CTCaps {
			if strings.EqualFold(d.DataStores[i].CTCaps[j].CTType, ctType) {
				return &d.DataStores[i].CTCaps[j]
			}
		}
	}
	return nil
}
